package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// CreateBatchParams are the caller-supplied fields for CreateBatch.
type CreateBatchParams struct {
	ID              string
	ProductID       string
	OwnerID         string
	BusinessNumber  string
	Quantity        int
	StartDate       string
	ExpectedEndDate string
	Location        string
	QRCode          string
	Notes           string
}

// CreateBatch creates a production batch against an existing product.
// Producer only. The business number is claimed in the same write set as the
// batch record, so the uniqueness check and the claim are atomic.
func (e *Engine) CreateBatch(ctx context.Context, call Call, p CreateBatchParams) (*model.Batch, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ID, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ProductID, "product_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.OwnerID, "owner_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.BusinessNumber, "business_number"); err != nil {
		return nil, err
	}
	if err := PositiveInt(p.Quantity, "quantity"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := products.get(t, p.ProductID); err != nil {
		return nil, err
	}

	batch := &model.Batch{
		Kind:            model.KindBatch,
		ID:              p.ID,
		ProductID:       p.ProductID,
		OwnerID:         p.OwnerID,
		BusinessNumber:  p.BusinessNumber,
		Status:          model.StatusCreated,
		Quantity:        p.Quantity,
		StartDate:       p.StartDate,
		ExpectedEndDate: p.ExpectedEndDate,
		Location:        p.Location,
		QRCode:          p.QRCode,
		Notes:           p.Notes,
		CreatedAt:       call.Timestamp,
		UpdatedAt:       call.Timestamp,
	}
	if err := batches.insert(t, p.ID, batch); err != nil {
		return nil, err
	}
	if err := batchNumbers.claim(t, p.BusinessNumber, p.ID); err != nil {
		return nil, err
	}
	if err := batchesByProduct.add(t, p.ProductID, p.ID); err != nil {
		return nil, err
	}
	if err := batchesByOwner.add(t, p.OwnerID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventBatchCreated, map[string]string{
		"batch_id": p.ID,
		"owner_id": p.OwnerID,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("batch created",
		zap.String("batch_id", p.ID),
		zap.String("product_id", p.ProductID),
		zap.String("business_number", p.BusinessNumber),
	)
	return batch, nil
}

// GetBatch retrieves a batch by ID.
func (e *Engine) GetBatch(ctx context.Context, id string) (*model.Batch, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return batches.get(e.read(ctx), id)
}

// UpdateBatchStatus moves a batch through its status machine. Producer only.
// Transitions out of COMPLETED and CANCELLED never succeed.
func (e *Engine) UpdateBatchStatus(ctx context.Context, call Call, id string, next model.Status) (*model.Batch, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	batch, err := batches.get(t, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(model.KindBatch, batch.Status, next); err != nil {
		return nil, err
	}

	batch.Status = next
	batch.UpdatedAt = call.Timestamp
	if err := batches.save(t, id, batch); err != nil {
		return nil, err
	}

	t.emit(model.EventBatchStatusChanged, map[string]string{
		"batch_id": id,
		"status":   string(next),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("batch status changed",
		zap.String("batch_id", id),
		zap.String("status", string(next)),
	)
	return batch, nil
}

// CompleteBatch transitions a batch to COMPLETED and records the actual end
// date in the same transaction. Producer only.
func (e *Engine) CompleteBatch(ctx context.Context, call Call, id, actualEndDate string) (*model.Batch, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	batch, err := batches.get(t, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(model.KindBatch, batch.Status, model.StatusCompleted); err != nil {
		return nil, err
	}

	batch.Status = model.StatusCompleted
	batch.ActualEndDate = actualEndDate
	batch.UpdatedAt = call.Timestamp
	if err := batches.save(t, id, batch); err != nil {
		return nil, err
	}

	t.emit(model.EventBatchStatusChanged, map[string]string{
		"batch_id": id,
		"status":   string(model.StatusCompleted),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("batch completed", zap.String("batch_id", id))
	return batch, nil
}

// GetBatchesByOwner returns all batches for an owner, in creation order.
func (e *Engine) GetBatchesByOwner(ctx context.Context, ownerID string) ([]*model.Batch, error) {
	if err := NonEmpty(ownerID, "owner_id"); err != nil {
		return nil, err
	}
	return e.listBatches(ctx, batchesByOwner, ownerID)
}

// GetBatchesByProduct returns all batches of a product, in creation order.
func (e *Engine) GetBatchesByProduct(ctx context.Context, productID string) ([]*model.Batch, error) {
	if err := NonEmpty(productID, "product_id"); err != nil {
		return nil, err
	}
	return e.listBatches(ctx, batchesByProduct, productID)
}

func (e *Engine) listBatches(ctx context.Context, idx relationIndex, parentID string) ([]*model.Batch, error) {
	t := e.read(ctx)
	ids, err := idx.list(t, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Batch, 0, len(ids))
	for _, id := range ids {
		b, err := batches.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
