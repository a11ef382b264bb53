package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Boiya123/agritrack-ledger/internal/contract"
	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"github.com/Boiya123/agritrack-ledger/internal/ledger"
)

var ctx = context.Background()

// captureSink records every emitted event for assertions.
type captureSink struct {
	events []model.Event
}

func (s *captureSink) Emit(_ context.Context, ev model.Event) {
	s.events = append(s.events, ev)
}

func (s *captureSink) last() *model.Event {
	if len(s.events) == 0 {
		return nil
	}
	return &s.events[len(s.events)-1]
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func callAs(role model.Role) contract.Call {
	return contract.Call{TxID: "tx-1", Timestamp: baseTime, Role: role}
}

func newHarness(t *testing.T) (*contract.Engine, *ledger.MemoryStore, *captureSink) {
	t.Helper()
	store := ledger.NewMemoryStore()
	sink := &captureSink{}
	return contract.New(store, sink, nil), store, sink
}

// seedBatch creates a product and one batch under it.
func seedBatch(t *testing.T, e *contract.Engine, batchID, businessNumber string) {
	t.Helper()
	if _, err := e.CreateProduct(ctx, callAs(model.RoleInspector), "prod-1", "Arabica beans", "washed"); err != nil {
		if !isConflict(err) {
			t.Fatal(err)
		}
	}
	_, err := e.CreateBatch(ctx, callAs(model.RoleProducer), contract.CreateBatchParams{
		ID:             batchID,
		ProductID:      "prod-1",
		OwnerID:        "farm-9",
		BusinessNumber: businessNumber,
		Quantity:       500,
		StartDate:      "2026-03-01",
		Location:       "Huila",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func isConflict(err error) bool {
	var cerr *model.ConflictError
	return errors.As(err, &cerr)
}

func TestCreateProduct_startsActive(t *testing.T) {
	e, _, sink := newHarness(t)

	p, err := e.CreateProduct(ctx, callAs(model.RoleInspector), "prod-1", "Arabica beans", "")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsActive {
		t.Error("new product should be active")
	}
	if got := sink.last(); got == nil || got.Type != model.EventProductCreated {
		t.Errorf("expected ProductCreated event, got %+v", got)
	}

	p2, err := e.DeactivateProduct(ctx, callAs(model.RoleInspector), "prod-1")
	if err != nil {
		t.Fatal(err)
	}
	if p2.IsActive {
		t.Error("product should be inactive after DeactivateProduct")
	}
}

func TestCreateProduct_producerDenied(t *testing.T) {
	e, store, _ := newHarness(t)

	_, err := e.CreateProduct(ctx, callAs(model.RoleProducer), "prod-1", "Arabica beans", "")
	var aerr *model.AuthorizationError
	if !errors.As(err, &aerr) {
		t.Fatalf("got %v, want AuthorizationError", err)
	}
	if store.Len() != 0 {
		t.Errorf("denied call wrote %d keys, want 0", store.Len())
	}
}

func TestCreateProduct_adminAllowed(t *testing.T) {
	e, _, _ := newHarness(t)

	if _, err := e.CreateProduct(ctx, callAs(model.RoleAdmin), "prod-1", "Arabica beans", ""); err != nil {
		t.Fatalf("admin should satisfy inspector check: %v", err)
	}
}

func TestCreateBatch_missingProductWritesNothing(t *testing.T) {
	e, store, sink := newHarness(t)

	_, err := e.CreateBatch(ctx, callAs(model.RoleProducer), contract.CreateBatchParams{
		ID:             "batch-1",
		ProductID:      "no-such-product",
		OwnerID:        "farm-9",
		BusinessNumber: "BN-001",
		Quantity:       10,
	})
	var nerr *model.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if nerr.Kind != model.KindProduct {
		t.Errorf("NotFoundError.Kind: got %q, want product", nerr.Kind)
	}
	if store.Len() != 0 {
		t.Errorf("failed create wrote %d keys, want 0", store.Len())
	}
	if len(sink.events) != 0 {
		t.Errorf("failed create emitted %d events, want 0", len(sink.events))
	}
}

func TestCreateBatch_duplicateBusinessNumber(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	_, err := e.CreateBatch(ctx, callAs(model.RoleProducer), contract.CreateBatchParams{
		ID:             "batch-2",
		ProductID:      "prod-1",
		OwnerID:        "farm-9",
		BusinessNumber: "BN-001",
		Quantity:       10,
	})
	var cerr *model.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if cerr.Field != "business_number" {
		t.Errorf("ConflictError.Field: got %q, want business_number", cerr.Field)
	}

	// The first claimant must be untouched, and the loser's batch absent.
	first, err := e.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatal(err)
	}
	if first.BusinessNumber != "BN-001" {
		t.Errorf("first batch business number changed: %q", first.BusinessNumber)
	}
	if _, err := e.GetBatch(ctx, "batch-2"); err == nil {
		t.Error("losing batch should not exist")
	}
}

func TestCreateBatch_duplicateIDConflict(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	_, err := e.CreateBatch(ctx, callAs(model.RoleProducer), contract.CreateBatchParams{
		ID:             "batch-1",
		ProductID:      "prod-1",
		OwnerID:        "farm-9",
		BusinessNumber: "BN-002",
		Quantity:       10,
	})
	var cerr *model.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if cerr.Field != "id" {
		t.Errorf("ConflictError.Field: got %q, want id", cerr.Field)
	}
}

func TestUpdateBatchStatus_terminalIsAbsorbing(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	if _, err := e.UpdateBatchStatus(ctx, callAs(model.RoleProducer), "batch-1", model.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	b, err := e.CompleteBatch(ctx, callAs(model.RoleProducer), "batch-1", "2026-04-01")
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != model.StatusCompleted || b.ActualEndDate != "2026-04-01" {
		t.Errorf("completed batch: got status=%s end=%s", b.Status, b.ActualEndDate)
	}

	_, err = e.UpdateBatchStatus(ctx, callAs(model.RoleProducer), "batch-1", model.StatusInProgress)
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("transition out of COMPLETED: got %v, want TransitionError", err)
	}

	// Failed transition must not dirty the record.
	again, _ := e.GetBatch(ctx, "batch-1")
	if again.Status != model.StatusCompleted {
		t.Errorf("batch status after rejected transition: got %s, want COMPLETED", again.Status)
	}
}

func TestUpdateBatchStatus_failedRecovers(t *testing.T) {
	e, _, sink := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	steps := []model.Status{model.StatusInProgress, model.StatusFailed, model.StatusInProgress}
	for _, s := range steps {
		if _, err := e.UpdateBatchStatus(ctx, callAs(model.RoleProducer), "batch-1", s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	if got := sink.last(); got.Type != model.EventBatchStatusChanged || got.Payload["status"] != string(model.StatusInProgress) {
		t.Errorf("last event: %+v", got)
	}
}

func TestRecordLifecycleEvent_appendOnly(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	p := contract.RecordLifecycleEventParams{
		ID:        "ev-1",
		BatchID:   "batch-1",
		EventType: "FERTILIZED",
		EventDate: "2026-03-05",
	}
	if _, err := e.RecordLifecycleEvent(ctx, callAs(model.RoleProducer), p); err != nil {
		t.Fatal(err)
	}
	_, err := e.RecordLifecycleEvent(ctx, callAs(model.RoleProducer), p)
	if !isConflict(err) {
		t.Fatalf("re-used event ID: got %v, want ConflictError", err)
	}
}

func TestRecordLifecycleEvent_zeroQuantityAllowed(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	_, err := e.RecordLifecycleEvent(ctx, callAs(model.RoleProducer), contract.RecordLifecycleEventParams{
		ID:               "ev-1",
		BatchID:          "batch-1",
		EventType:        "INSPECTED",
		QuantityAffected: 0,
	})
	if err != nil {
		t.Fatalf("zero quantity_affected should be valid: %v", err)
	}
}

func TestGetBatchLifecycleEvents_orderPreserved(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		_, err := e.RecordLifecycleEvent(ctx, callAs(model.RoleProducer), contract.RecordLifecycleEventParams{
			ID:        id,
			BatchID:   "batch-1",
			EventType: "WATERED",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	events, err := e.GetBatchLifecycleEvents(ctx, "batch-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"ev-1", "ev-2", "ev-3"} {
		if events[i].ID != want {
			t.Errorf("events[%d].ID: got %q, want %q", i, events[i].ID, want)
		}
	}
}

func TestGetBatchesByOwner_emptyAndOrdered(t *testing.T) {
	e, _, _ := newHarness(t)

	got, err := e.GetBatchesByOwner(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown owner: got %d batches, want 0", len(got))
	}

	seedBatch(t, e, "batch-1", "BN-001")
	seedBatch(t, e, "batch-2", "BN-002")

	got, err = e.GetBatchesByOwner(ctx, "farm-9")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "batch-1" || got[1].ID != "batch-2" {
		t.Errorf("owner batches: got %+v", got)
	}

	byProduct, err := e.GetBatchesByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byProduct) != 2 {
		t.Errorf("product batches: got %d, want 2", len(byProduct))
	}
}

func seedTransport(t *testing.T, e *contract.Engine, id string) {
	t.Helper()
	seedBatch(t, e, "batch-1", "BN-001")
	_, err := e.CreateTransportManifest(ctx, callAs(model.RoleProducer), contract.CreateTransportParams{
		ID:                   id,
		BatchID:              "batch-1",
		FromPartyID:          "farm-9",
		ToPartyID:            "plant-2",
		VehicleID:            "TRK-77",
		TemperatureMonitored: true,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateTransportManifest_startsCreated(t *testing.T) {
	e, _, sink := newHarness(t)
	seedTransport(t, e, "tr-1")

	tr, err := e.GetTransport(ctx, "tr-1")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Status != model.StatusCreated {
		t.Errorf("new transport status: got %s, want CREATED", tr.Status)
	}
	if got := sink.last(); got.Type != model.EventTransportCreated {
		t.Errorf("last event: %+v", got)
	}
}

func TestUpdateTransportStatus_arrivalOnlyOnCompletion(t *testing.T) {
	e, _, _ := newHarness(t)
	seedTransport(t, e, "tr-1")

	tr, err := e.UpdateTransportStatus(ctx, callAs(model.RoleProducer), "tr-1", model.StatusInProgress, "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if tr.ArrivalTime != "" {
		t.Errorf("arrival time set before completion: %q", tr.ArrivalTime)
	}

	tr, err = e.UpdateTransportStatus(ctx, callAs(model.RoleProducer), "tr-1", model.StatusCompleted, "2026-03-02T08:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if tr.ArrivalTime != "2026-03-02T08:00:00Z" {
		t.Errorf("arrival time: got %q", tr.ArrivalTime)
	}
}

func TestAddTemperatureLog_boundariesSafe(t *testing.T) {
	e, _, sink := newHarness(t)
	seedTransport(t, e, "tr-1")
	before := len(sink.events)

	for i, reading := range []float64{2.0, 8.0, 5.0} {
		lg, err := e.AddTemperatureLog(ctx, callAs(model.RoleProducer), logID(i), "tr-1", reading, "2026-03-01T13:00:00Z", "reefer")
		if err != nil {
			t.Fatal(err)
		}
		if lg.IsViolation {
			t.Errorf("reading %v flagged as violation", reading)
		}
	}
	if len(sink.events) != before {
		t.Errorf("safe readings emitted %d events", len(sink.events)-before)
	}
}

func logID(i int) string {
	return "log-" + string(rune('a'+i))
}

func TestAddTemperatureLog_violationEmitsEvent(t *testing.T) {
	e, _, sink := newHarness(t)
	seedTransport(t, e, "tr-1")

	lg, err := e.AddTemperatureLog(ctx, callAs(model.RoleProducer), "log-1", "tr-1", 1.5, "2026-03-01T13:00:00Z", "reefer")
	if err != nil {
		t.Fatal(err)
	}
	if !lg.IsViolation {
		t.Error("1.5 should be a violation")
	}
	got := sink.last()
	if got.Type != model.EventTemperatureViolation {
		t.Fatalf("last event type: got %s", got.Type)
	}
	if got.Payload["reading"] != "1.5" {
		t.Errorf("violation payload reading: got %q, want 1.5", got.Payload["reading"])
	}
}

func TestAddTemperatureLog_unknownTransport(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	_, err := e.AddTemperatureLog(ctx, callAs(model.RoleProducer), "log-1", "ghost", 5.0, "", "")
	var nerr *model.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestGetTransportTemperatureLogs_ordered(t *testing.T) {
	e, _, _ := newHarness(t)
	seedTransport(t, e, "tr-1")

	for _, id := range []string{"log-1", "log-2"} {
		if _, err := e.AddTemperatureLog(ctx, callAs(model.RoleProducer), id, "tr-1", 4.0, "", ""); err != nil {
			t.Fatal(err)
		}
	}
	logs, err := e.GetTransportTemperatureLogs(ctx, "tr-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].ID != "log-1" || logs[1].ID != "log-2" {
		t.Errorf("logs: %+v", logs)
	}
}

func seedProcessing(t *testing.T, e *contract.Engine, id string) {
	t.Helper()
	seedBatch(t, e, "batch-1", "BN-001")
	_, err := e.RecordProcessing(ctx, callAs(model.RoleProducer), contract.ProcessingParams{
		ID:           id,
		BatchID:      "batch-1",
		ProcessDate:  "2026-03-10",
		FacilityName: "Mill 4",
		OutputCount:  120,
		YieldKg:      480.5,
		QualityScore: 92.1,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestUpdateProcessing_preservesCreationAndBatch(t *testing.T) {
	e, _, _ := newHarness(t)
	seedProcessing(t, e, "proc-1")

	later := contract.Call{TxID: "tx-2", Timestamp: baseTime.Add(time.Hour), Role: model.RoleProducer}
	updated, err := e.UpdateProcessing(ctx, later, contract.ProcessingParams{
		ID:           "proc-1",
		BatchID:      "batch-1",
		ProcessDate:  "2026-03-11",
		FacilityName: "Mill 4",
		OutputCount:  118,
		YieldKg:      470.0,
		QualityScore: 91.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt changed: %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("UpdatedAt: got %v", updated.UpdatedAt)
	}

	_, err = e.UpdateProcessing(ctx, later, contract.ProcessingParams{
		ID:      "proc-1",
		BatchID: "other-batch",
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("batch_id swap: got %v, want ValidationError", err)
	}
}

func TestIssueCertification_roleMatrix(t *testing.T) {
	e, _, _ := newHarness(t)
	seedProcessing(t, e, "proc-1")

	p := contract.IssueCertificationParams{
		ID:           "cert-1",
		ProcessingID: "proc-1",
		CertType:     "ORGANIC",
		IssuedDate:   "2026-03-12",
	}
	_, err := e.IssueCertification(ctx, callAs(model.RoleProducer), p)
	var aerr *model.AuthorizationError
	if !errors.As(err, &aerr) {
		t.Fatalf("producer issuing certification: got %v, want AuthorizationError", err)
	}

	cert, err := e.IssueCertification(ctx, callAs(model.RoleAdmin), p)
	if err != nil {
		t.Fatal(err)
	}
	if cert.Status != model.StatusApproved {
		t.Errorf("issued certification status: got %s, want APPROVED", cert.Status)
	}

	// APPROVED is terminal.
	_, err = e.UpdateCertificationStatus(ctx, callAs(model.RoleInspector), "cert-1", model.StatusRejected)
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Errorf("APPROVED -> REJECTED: got %v, want TransitionError", err)
	}

	certs, err := e.GetCertificationsByProcessing(ctx, "proc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 1 || certs[0].ID != "cert-1" {
		t.Errorf("certifications by processing: %+v", certs)
	}
}

func TestRegulatoryRecord_lifecycle(t *testing.T) {
	e, _, _ := newHarness(t)
	seedBatch(t, e, "batch-1", "BN-001")

	rec, err := e.CreateRegulatoryRecord(ctx, callAs(model.RoleInspector), contract.CreateRegulatoryParams{
		ID:         "reg-1",
		BatchID:    "batch-1",
		RecordType: "EXPORT_PERMIT",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.StatusPending {
		t.Errorf("new regulatory status: got %s, want PENDING", rec.Status)
	}

	rec, err = e.UpdateRegulatoryStatus(ctx, callAs(model.RoleInspector), "reg-1", model.StatusRejected, "missing documents")
	if err != nil {
		t.Fatal(err)
	}
	if rec.RejectionReason != "missing documents" {
		t.Errorf("rejection reason: got %q", rec.RejectionReason)
	}

	if _, err := e.UpdateRegulatoryStatus(ctx, callAs(model.RoleInspector), "reg-1", model.StatusPending, ""); err != nil {
		t.Fatal(err)
	}
	rec, err = e.UpdateRegulatoryStatus(ctx, callAs(model.RoleInspector), "reg-1", model.StatusApproved, "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.StatusApproved {
		t.Errorf("status: got %s, want APPROVED", rec.Status)
	}

	// APPROVED is terminal; flags still accumulate.
	_, err = e.UpdateRegulatoryStatus(ctx, callAs(model.RoleInspector), "reg-1", model.StatusRejected, "")
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Errorf("APPROVED -> REJECTED: got %v, want TransitionError", err)
	}

	rec, err = e.FlagRegulatoryAudit(ctx, callAs(model.RoleInspector), "reg-1", "spot-check-2026-08")
	if err != nil {
		t.Fatal(err)
	}
	rec, err = e.FlagRegulatoryAudit(ctx, callAs(model.RoleInspector), "reg-1", "complaint-114")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.AuditFlags) != 2 || rec.AuditFlags[0] != "spot-check-2026-08" {
		t.Errorf("audit flags: %v", rec.AuditFlags)
	}

	recs, err := e.GetRegulatoryRecordsByBatch(ctx, "batch-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("records by batch: got %d, want 1", len(recs))
	}
}

func TestEngine_timestampsComeFromCall(t *testing.T) {
	e, _, _ := newHarness(t)

	ts := time.Date(2031, 7, 4, 0, 0, 0, 0, time.UTC)
	p, err := e.CreateProduct(ctx, contract.Call{TxID: "tx-x", Timestamp: ts, Role: model.RoleInspector}, "prod-x", "Cocoa", "")
	if err != nil {
		t.Fatal(err)
	}
	if !p.CreatedAt.Equal(ts) || !p.UpdatedAt.Equal(ts) {
		t.Errorf("timestamps: created=%v updated=%v, want %v", p.CreatedAt, p.UpdatedAt, ts)
	}
}
