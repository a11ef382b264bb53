package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// CreateRegulatoryParams are the caller-supplied fields for
// CreateRegulatoryRecord.
type CreateRegulatoryParams struct {
	ID          string
	BatchID     string
	RecordType  string
	IssuedDate  string
	ExpiryDate  string
	RegulatorID string
	Details     string
}

// CreateRegulatoryRecord creates a regulatory record for a batch.
// Inspector only. Records start PENDING.
func (e *Engine) CreateRegulatoryRecord(ctx context.Context, call Call, p CreateRegulatoryParams) (*model.RegulatoryRecord, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ID, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.BatchID, "batch_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.RecordType, "record_type"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := batches.get(t, p.BatchID); err != nil {
		return nil, err
	}

	record := &model.RegulatoryRecord{
		Kind:        model.KindRegulatory,
		ID:          p.ID,
		BatchID:     p.BatchID,
		RecordType:  p.RecordType,
		Status:      model.StatusPending,
		IssuedDate:  p.IssuedDate,
		ExpiryDate:  p.ExpiryDate,
		RegulatorID: p.RegulatorID,
		Details:     p.Details,
		CreatedAt:   call.Timestamp,
		UpdatedAt:   call.Timestamp,
	}
	if err := regulatories.insert(t, p.ID, record); err != nil {
		return nil, err
	}
	if err := regulatoriesByBatch.add(t, p.BatchID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventRegulatoryUpdated, map[string]string{
		"regulatory_id": p.ID,
		"batch_id":      p.BatchID,
		"status":        string(model.StatusPending),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("regulatory record created",
		zap.String("regulatory_id", p.ID),
		zap.String("batch_id", p.BatchID),
	)
	return record, nil
}

// GetRegulatoryRecord retrieves a regulatory record by ID.
func (e *Engine) GetRegulatoryRecord(ctx context.Context, id string) (*model.RegulatoryRecord, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return regulatories.get(e.read(ctx), id)
}

// UpdateRegulatoryStatus moves a regulatory record through its status
// machine. Inspector only. A rejection reason is captured only on the
// transition into REJECTED.
func (e *Engine) UpdateRegulatoryStatus(ctx context.Context, call Call, id string, next model.Status, rejectionReason string) (*model.RegulatoryRecord, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	record, err := regulatories.get(t, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(model.KindRegulatory, record.Status, next); err != nil {
		return nil, err
	}

	record.Status = next
	if next == model.StatusRejected {
		record.RejectionReason = rejectionReason
	}
	record.UpdatedAt = call.Timestamp
	if err := regulatories.save(t, id, record); err != nil {
		return nil, err
	}

	t.emit(model.EventRegulatoryUpdated, map[string]string{
		"regulatory_id": id,
		"status":        string(next),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("regulatory status changed",
		zap.String("regulatory_id", id),
		zap.String("status", string(next)),
	)
	return record, nil
}

// FlagRegulatoryAudit appends one audit flag to a regulatory record.
// Inspector only. Flags accumulate for the record's lifetime and are never
// removed, regardless of status.
func (e *Engine) FlagRegulatoryAudit(ctx context.Context, call Call, id, flag string) (*model.RegulatoryRecord, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(flag, "flag"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	record, err := regulatories.get(t, id)
	if err != nil {
		return nil, err
	}

	record.AuditFlags = append(record.AuditFlags, flag)
	record.UpdatedAt = call.Timestamp
	if err := regulatories.save(t, id, record); err != nil {
		return nil, err
	}

	t.emit(model.EventRegulatoryUpdated, map[string]string{
		"regulatory_id": id,
		"audit_flag":    flag,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("regulatory record flagged",
		zap.String("regulatory_id", id),
		zap.String("flag", flag),
	)
	return record, nil
}

// GetRegulatoryRecordsByBatch returns a batch's regulatory records in
// creation order.
func (e *Engine) GetRegulatoryRecordsByBatch(ctx context.Context, batchID string) ([]*model.RegulatoryRecord, error) {
	if err := NonEmpty(batchID, "batch_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := regulatoriesByBatch.list(t, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.RegulatoryRecord, 0, len(ids))
	for _, id := range ids {
		r, err := regulatories.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
