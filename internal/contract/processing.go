package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// ProcessingParams are the caller-supplied fields for RecordProcessing and
// UpdateProcessing.
type ProcessingParams struct {
	ID           string
	BatchID      string
	ProcessDate  string
	FacilityName string
	OutputCount  int
	YieldKg      float64
	QualityScore float64
	Notes        string
}

func validateProcessing(p ProcessingParams) error {
	if err := NonEmpty(p.ID, "id"); err != nil {
		return err
	}
	if err := NonEmpty(p.BatchID, "batch_id"); err != nil {
		return err
	}
	if err := NonNegativeInt(p.OutputCount, "output_count"); err != nil {
		return err
	}
	if err := NonNegativeFloat(p.YieldKg, "yield_kg"); err != nil {
		return err
	}
	return NonNegativeFloat(p.QualityScore, "quality_score")
}

// RecordProcessing records a processing facility's output for a batch.
// Producer only.
func (e *Engine) RecordProcessing(ctx context.Context, call Call, p ProcessingParams) (*model.Processing, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := validateProcessing(p); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := batches.get(t, p.BatchID); err != nil {
		return nil, err
	}

	processing := &model.Processing{
		Kind:         model.KindProcessing,
		ID:           p.ID,
		BatchID:      p.BatchID,
		ProcessDate:  p.ProcessDate,
		FacilityName: p.FacilityName,
		OutputCount:  p.OutputCount,
		YieldKg:      p.YieldKg,
		QualityScore: p.QualityScore,
		Notes:        p.Notes,
		CreatedAt:    call.Timestamp,
		UpdatedAt:    call.Timestamp,
	}
	if err := processings.insert(t, p.ID, processing); err != nil {
		return nil, err
	}
	if err := processingsByBatch.add(t, p.BatchID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventProcessingRecorded, map[string]string{
		"processing_id": p.ID,
		"batch_id":      p.BatchID,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("processing recorded",
		zap.String("processing_id", p.ID),
		zap.String("batch_id", p.BatchID),
	)
	return processing, nil
}

// UpdateProcessing re-saves an existing processing record. Producer only.
// Processing has no status machine; the batch reference is immutable and the
// creation timestamp is preserved.
func (e *Engine) UpdateProcessing(ctx context.Context, call Call, p ProcessingParams) (*model.Processing, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := validateProcessing(p); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	current, err := processings.get(t, p.ID)
	if err != nil {
		return nil, err
	}
	if current.BatchID != p.BatchID {
		return nil, &model.ValidationError{Field: "batch_id", Reason: "must match the existing record"}
	}

	current.ProcessDate = p.ProcessDate
	current.FacilityName = p.FacilityName
	current.OutputCount = p.OutputCount
	current.YieldKg = p.YieldKg
	current.QualityScore = p.QualityScore
	current.Notes = p.Notes
	current.UpdatedAt = call.Timestamp
	if err := processings.save(t, p.ID, current); err != nil {
		return nil, err
	}

	t.emit(model.EventProcessingRecorded, map[string]string{
		"processing_id": p.ID,
		"batch_id":      p.BatchID,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("processing updated", zap.String("processing_id", p.ID))
	return current, nil
}

// GetProcessingRecord retrieves a processing record by ID.
func (e *Engine) GetProcessingRecord(ctx context.Context, id string) (*model.Processing, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return processings.get(e.read(ctx), id)
}

// GetProcessingByBatch returns a batch's processing records in creation order.
func (e *Engine) GetProcessingByBatch(ctx context.Context, batchID string) ([]*model.Processing, error) {
	if err := NonEmpty(batchID, "batch_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := processingsByBatch.list(t, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Processing, 0, len(ids))
	for _, id := range ids {
		p, err := processings.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
