package contract

import (
	"encoding/json"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
)

// repo provides typed access to one asset kind's records. Primary keys are
// kind-prefixed ("batch|batch-1"), which scopes ID uniqueness to the kind and
// keeps different kinds from colliding in the flat key space.
type repo[T any] struct {
	kind model.Kind
}

func (r repo[T]) key(id string) string {
	return string(r.kind) + "|" + id
}

func (r repo[T]) exists(t *tx, id string) (bool, error) {
	raw, err := t.get(r.key(id))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// get returns the record, or a NotFoundError when absent.
func (r repo[T]) get(t *tx, id string) (*T, error) {
	raw, err := t.get(r.key(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &model.NotFoundError{Kind: r.kind, ID: id}
	}
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, &model.SerializationError{Kind: r.kind, ID: id, Err: err}
	}
	return rec, nil
}

// save stages the record under its primary key, overwriting any prior value.
func (r repo[T]) save(t *tx, id string, rec *T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return &model.SerializationError{Kind: r.kind, ID: id, Err: err}
	}
	t.put(r.key(id), raw)
	return nil
}

// insert stages a new record, failing with a ConflictError when the primary
// ID is already taken.
func (r repo[T]) insert(t *tx, id string, rec *T) error {
	taken, err := r.exists(t, id)
	if err != nil {
		return err
	}
	if taken {
		return &model.ConflictError{Kind: r.kind, Field: "id", Value: id}
	}
	return r.save(t, id, rec)
}

// uniqueIndex enforces uniqueness of a secondary field across all records of
// a kind by claiming a derived key at create time.
type uniqueIndex struct {
	kind  model.Kind
	field string
}

func (u uniqueIndex) key(value string) string {
	return "uniq|" + string(u.kind) + "|" + u.field + "|" + value
}

// claim stages the derived key, failing with a ConflictError when the value
// is already claimed by any record.
func (u uniqueIndex) claim(t *tx, value, id string) error {
	raw, err := t.get(u.key(value))
	if err != nil {
		return err
	}
	if raw != nil {
		return &model.ConflictError{Kind: u.kind, Field: u.field, Value: value}
	}
	t.put(u.key(value), []byte(id))
	return nil
}

// relationIndex maintains the parent-ID -> ordered child-ID list that backs
// the by-relationship queries. The list is a single bounded record, appended
// at child create time, so reads never scan.
type relationIndex struct {
	child  model.Kind
	parent string
}

func (x relationIndex) key(parentID string) string {
	return "rel|" + string(x.child) + "|" + x.parent + "|" + parentID
}

func (x relationIndex) list(t *tx, parentID string) ([]string, error) {
	raw, err := t.get(x.key(parentID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, &model.SerializationError{Kind: x.child, ID: parentID, Err: err}
	}
	return ids, nil
}

func (x relationIndex) add(t *tx, parentID, childID string) error {
	ids, err := x.list(t, parentID)
	if err != nil {
		return err
	}
	ids = append(ids, childID)
	raw, err := json.Marshal(ids)
	if err != nil {
		return &model.SerializationError{Kind: x.child, ID: parentID, Err: err}
	}
	t.put(x.key(parentID), raw)
	return nil
}

// Typed repositories and the derived-key indices maintained at write time.
var (
	products       = repo[model.Product]{kind: model.KindProduct}
	batches        = repo[model.Batch]{kind: model.KindBatch}
	lifecycles     = repo[model.LifecycleEvent]{kind: model.KindLifecycleEvent}
	transports     = repo[model.Transport]{kind: model.KindTransport}
	temperatures   = repo[model.TemperatureLog]{kind: model.KindTemperatureLog}
	processings    = repo[model.Processing]{kind: model.KindProcessing}
	certifications = repo[model.Certification]{kind: model.KindCertification}
	regulatories   = repo[model.RegulatoryRecord]{kind: model.KindRegulatory}

	batchNumbers = uniqueIndex{kind: model.KindBatch, field: "business_number"}

	batchesByProduct    = relationIndex{child: model.KindBatch, parent: "product"}
	batchesByOwner      = relationIndex{child: model.KindBatch, parent: "owner"}
	lifecyclesByBatch   = relationIndex{child: model.KindLifecycleEvent, parent: "batch"}
	transportsByBatch   = relationIndex{child: model.KindTransport, parent: "batch"}
	tempsByTransport    = relationIndex{child: model.KindTemperatureLog, parent: "transport"}
	processingsByBatch  = relationIndex{child: model.KindProcessing, parent: "batch"}
	certsByProcessing   = relationIndex{child: model.KindCertification, parent: "processing"}
	regulatoriesByBatch = relationIndex{child: model.KindRegulatory, parent: "batch"}
)
