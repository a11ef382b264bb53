package contract_test

import (
	"errors"
	"testing"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
)

func TestSubmit_unknownOperation(t *testing.T) {
	e, _, _ := newHarness(t)

	_, err := e.Submit(ctx, callAs(model.RoleAdmin), "MintGold", nil)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if verr.Field != "operation" {
		t.Errorf("ValidationError.Field: got %q, want operation", verr.Field)
	}
}

func TestSubmit_wrongArity(t *testing.T) {
	e, _, _ := newHarness(t)

	_, err := e.Submit(ctx, callAs(model.RoleInspector), "CreateProduct", []string{"prod-1"})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestSubmit_numericParseFailure(t *testing.T) {
	e, _, _ := newHarness(t)
	if _, err := e.Submit(ctx, callAs(model.RoleInspector), "CreateProduct", []string{"prod-1", "Arabica beans", ""}); err != nil {
		t.Fatal(err)
	}

	_, err := e.Submit(ctx, callAs(model.RoleProducer), "CreateBatch", []string{
		"batch-1", "prod-1", "farm-9", "BN-001", "lots", "2026-03-01", "", "Huila", "", "",
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if verr.Field != "quantity" {
		t.Errorf("ValidationError.Field: got %q, want quantity", verr.Field)
	}
}

func TestSubmitEvaluate_roundTrip(t *testing.T) {
	e, _, sink := newHarness(t)

	ops := []struct {
		op   string
		args []string
	}{
		{"CreateProduct", []string{"prod-1", "Arabica beans", "washed"}},
		{"CreateBatch", []string{"batch-1", "prod-1", "farm-9", "BN-001", "500", "2026-03-01", "2026-06-01", "Huila", "QR-1", ""}},
		{"RecordLifecycleEvent", []string{"ev-1", "batch-1", "PLANTED", "", "worker-3", "2026-03-02", "0", ""}},
		{"CreateTransportManifest", []string{"tr-1", "batch-1", "farm-9", "plant-2", "TRK-77", "J. Rojas", "2026-03-03T06:00:00Z", "Huila", "Bogota", "true", ""}},
		{"AddTemperatureLog", []string{"log-1", "tr-1", "9.5", "2026-03-03T07:00:00Z", "reefer"}},
		{"UpdateTransportStatus", []string{"tr-1", "IN_PROGRESS", ""}},
		{"RecordProcessing", []string{"proc-1", "batch-1", "2026-03-10", "Mill 4", "120", "480.5", "92.1", ""}},
		{"IssueCertification", []string{"cert-1", "proc-1", "ORGANIC", "2026-03-12", "2027-03-12", "insp-5", ""}},
		{"CreateRegulatoryRecord", []string{"reg-1", "batch-1", "EXPORT_PERMIT", "2026-03-13", "", "reg-auth", ""}},
		{"FlagRegulatoryAudit", []string{"reg-1", "spot-check"}},
	}
	for _, o := range ops {
		if _, err := e.Submit(ctx, callAs(model.RoleAdmin), o.op, o.args); err != nil {
			t.Fatalf("%s: %v", o.op, err)
		}
	}

	got, err := e.Evaluate(ctx, "GetBatch", []string{"batch-1"})
	if err != nil {
		t.Fatal(err)
	}
	batch, ok := got.(*model.Batch)
	if !ok {
		t.Fatalf("GetBatch returned %T", got)
	}
	if batch.Quantity != 500 || batch.BusinessNumber != "BN-001" {
		t.Errorf("batch: %+v", batch)
	}

	got, err = e.Evaluate(ctx, "GetTransportTemperatureLogs", []string{"tr-1"})
	if err != nil {
		t.Fatal(err)
	}
	logs, ok := got.([]*model.TemperatureLog)
	if !ok || len(logs) != 1 {
		t.Fatalf("GetTransportTemperatureLogs returned %T len %d", got, len(logs))
	}
	if !logs[0].IsViolation {
		t.Error("9.5 should be flagged as a violation")
	}

	violated := false
	for _, ev := range sink.events {
		if ev.Type == model.EventTemperatureViolation {
			violated = true
		}
	}
	if !violated {
		t.Error("expected a TemperatureViolationDetected event")
	}
}

func TestEvaluate_unknownOperation(t *testing.T) {
	e, _, _ := newHarness(t)

	_, err := e.Evaluate(ctx, "GetGold", []string{"x"})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestSubmit_authorizationFlowsThroughDispatch(t *testing.T) {
	e, _, _ := newHarness(t)

	_, err := e.Submit(ctx, callAs(model.RoleProducer), "CreateProduct", []string{"prod-1", "Arabica beans", ""})
	var aerr *model.AuthorizationError
	if !errors.As(err, &aerr) {
		t.Fatalf("got %v, want AuthorizationError", err)
	}
}
