package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// CreateProduct registers a new product type. Inspector only.
// Products start active.
func (e *Engine) CreateProduct(ctx context.Context, call Call, id, name, description string) (*model.Product, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(name, "name"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	product := &model.Product{
		Kind:        model.KindProduct,
		ID:          id,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   call.Timestamp,
		UpdatedAt:   call.Timestamp,
	}
	if err := products.insert(t, id, product); err != nil {
		return nil, err
	}

	t.emit(model.EventProductCreated, map[string]string{"product_id": id})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("product created", zap.String("product_id", id))
	return product, nil
}

// GetProduct retrieves a product by ID.
func (e *Engine) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return products.get(e.read(ctx), id)
}

// ActivateProduct re-enables a deactivated product. Inspector only.
func (e *Engine) ActivateProduct(ctx context.Context, call Call, id string) (*model.Product, error) {
	return e.setProductActive(ctx, call, id, true)
}

// DeactivateProduct disables a product so no new batches reference it in
// practice; existing batches are untouched. Inspector only.
func (e *Engine) DeactivateProduct(ctx context.Context, call Call, id string) (*model.Product, error) {
	return e.setProductActive(ctx, call, id, false)
}

func (e *Engine) setProductActive(ctx context.Context, call Call, id string, active bool) (*model.Product, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	product, err := products.get(t, id)
	if err != nil {
		return nil, err
	}
	product.IsActive = active
	product.UpdatedAt = call.Timestamp
	if err := products.save(t, id, product); err != nil {
		return nil, err
	}
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("product activity changed",
		zap.String("product_id", id),
		zap.Bool("active", active),
	)
	return product, nil
}
