package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// RecordLifecycleEventParams are the caller-supplied fields for
// RecordLifecycleEvent.
type RecordLifecycleEventParams struct {
	ID               string
	BatchID          string
	EventType        string
	Description      string
	RecordedBy       string
	EventDate        string
	QuantityAffected int
	Metadata         string
}

// RecordLifecycleEvent appends a lifecycle event to a batch. Producer only.
// Lifecycle events are append-only: there is no update or delete operation,
// and re-using an event ID fails with a conflict.
func (e *Engine) RecordLifecycleEvent(ctx context.Context, call Call, p RecordLifecycleEventParams) (*model.LifecycleEvent, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ID, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.BatchID, "batch_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.EventType, "event_type"); err != nil {
		return nil, err
	}
	if err := NonNegativeInt(p.QuantityAffected, "quantity_affected"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := batches.get(t, p.BatchID); err != nil {
		return nil, err
	}

	event := &model.LifecycleEvent{
		Kind:             model.KindLifecycleEvent,
		ID:               p.ID,
		BatchID:          p.BatchID,
		EventType:        p.EventType,
		Description:      p.Description,
		RecordedBy:       p.RecordedBy,
		EventDate:        p.EventDate,
		QuantityAffected: p.QuantityAffected,
		Metadata:         p.Metadata,
		CreatedAt:        call.Timestamp,
	}
	if err := lifecycles.insert(t, p.ID, event); err != nil {
		return nil, err
	}
	if err := lifecyclesByBatch.add(t, p.BatchID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventLifecycleRecorded, map[string]string{
		"event_id":   p.ID,
		"batch_id":   p.BatchID,
		"event_type": p.EventType,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("lifecycle event recorded",
		zap.String("event_id", p.ID),
		zap.String("batch_id", p.BatchID),
		zap.String("event_type", p.EventType),
	)
	return event, nil
}

// GetLifecycleEvent retrieves a lifecycle event by ID.
func (e *Engine) GetLifecycleEvent(ctx context.Context, id string) (*model.LifecycleEvent, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return lifecycles.get(e.read(ctx), id)
}

// GetBatchLifecycleEvents returns a batch's lifecycle events in the order
// they were recorded.
func (e *Engine) GetBatchLifecycleEvents(ctx context.Context, batchID string) ([]*model.LifecycleEvent, error) {
	if err := NonEmpty(batchID, "batch_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := lifecyclesByBatch.list(t, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.LifecycleEvent, 0, len(ids))
	for _, id := range ids {
		ev, err := lifecycles.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
