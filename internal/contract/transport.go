package contract

import (
	"context"
	"strconv"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// Cold-chain safe range. Readings strictly outside [min, max] are
// violations; the boundary values themselves are safe.
const (
	TemperatureMinSafe = 2.0
	TemperatureMaxSafe = 8.0
)

// IsViolation reports whether a temperature reading falls outside the safe
// range. Pure; the stored is_violation flag is derived from this exactly once,
// at log creation.
func IsViolation(reading float64) bool {
	return reading < TemperatureMinSafe || reading > TemperatureMaxSafe
}

// CreateTransportParams are the caller-supplied fields for
// CreateTransportManifest.
type CreateTransportParams struct {
	ID                   string
	BatchID              string
	FromPartyID          string
	ToPartyID            string
	VehicleID            string
	DriverName           string
	DepartureTime        string
	OriginLocation       string
	DestinationLocation  string
	TemperatureMonitored bool
	Notes                string
}

// CreateTransportManifest creates a transport manifest for a batch.
// Producer only. Transports start in CREATED and follow the production
// status machine.
func (e *Engine) CreateTransportManifest(ctx context.Context, call Call, p CreateTransportParams) (*model.Transport, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ID, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.BatchID, "batch_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.FromPartyID, "from_party_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ToPartyID, "to_party_id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := batches.get(t, p.BatchID); err != nil {
		return nil, err
	}

	transport := &model.Transport{
		Kind:                 model.KindTransport,
		ID:                   p.ID,
		BatchID:              p.BatchID,
		FromPartyID:          p.FromPartyID,
		ToPartyID:            p.ToPartyID,
		VehicleID:            p.VehicleID,
		DriverName:           p.DriverName,
		DepartureTime:        p.DepartureTime,
		OriginLocation:       p.OriginLocation,
		DestinationLocation:  p.DestinationLocation,
		TemperatureMonitored: p.TemperatureMonitored,
		Status:               model.StatusCreated,
		Notes:                p.Notes,
		CreatedAt:            call.Timestamp,
		UpdatedAt:            call.Timestamp,
	}
	if err := transports.insert(t, p.ID, transport); err != nil {
		return nil, err
	}
	if err := transportsByBatch.add(t, p.BatchID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventTransportCreated, map[string]string{
		"transport_id": p.ID,
		"batch_id":     p.BatchID,
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("transport created",
		zap.String("transport_id", p.ID),
		zap.String("batch_id", p.BatchID),
	)
	return transport, nil
}

// GetTransport retrieves a transport manifest by ID.
func (e *Engine) GetTransport(ctx context.Context, id string) (*model.Transport, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return transports.get(e.read(ctx), id)
}

// UpdateTransportStatus moves a transport through the production status
// machine. Producer only. The arrival time is recorded only when the
// transport reaches COMPLETED.
func (e *Engine) UpdateTransportStatus(ctx context.Context, call Call, id string, next model.Status, arrivalTime string) (*model.Transport, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	transport, err := transports.get(t, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(model.KindTransport, transport.Status, next); err != nil {
		return nil, err
	}

	transport.Status = next
	if next == model.StatusCompleted {
		transport.ArrivalTime = arrivalTime
	}
	transport.UpdatedAt = call.Timestamp
	if err := transports.save(t, id, transport); err != nil {
		return nil, err
	}

	t.emit(model.EventTransportStatus, map[string]string{
		"transport_id": id,
		"status":       string(next),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("transport status changed",
		zap.String("transport_id", id),
		zap.String("status", string(next)),
	)
	return transport, nil
}

// GetTransportsByBatch returns a batch's transports in creation order.
func (e *Engine) GetTransportsByBatch(ctx context.Context, batchID string) ([]*model.Transport, error) {
	if err := NonEmpty(batchID, "batch_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := transportsByBatch.list(t, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Transport, 0, len(ids))
	for _, id := range ids {
		tr, err := transports.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

// AddTemperatureLog records a cold-chain reading against a transport.
// Producer only. Append-only, like lifecycle events. A reading outside the
// safe range is flagged on the record and additionally emits a violation
// event for off-ledger alerting.
func (e *Engine) AddTemperatureLog(ctx context.Context, call Call, id, transportID string, reading float64, timestamp, location string) (*model.TemperatureLog, error) {
	if err := Authorize(call.Role, model.RoleProducer); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(transportID, "transport_id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := transports.get(t, transportID); err != nil {
		return nil, err
	}

	violation := IsViolation(reading)
	tempLog := &model.TemperatureLog{
		Kind:        model.KindTemperatureLog,
		ID:          id,
		TransportID: transportID,
		Reading:     reading,
		Timestamp:   timestamp,
		Location:    location,
		IsViolation: violation,
		CreatedAt:   call.Timestamp,
	}
	if err := temperatures.insert(t, id, tempLog); err != nil {
		return nil, err
	}
	if err := tempsByTransport.add(t, transportID, id); err != nil {
		return nil, err
	}

	if violation {
		t.emit(model.EventTemperatureViolation, map[string]string{
			"log_id":       id,
			"transport_id": transportID,
			"reading":      strconv.FormatFloat(reading, 'f', -1, 64),
		})
	}
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("temperature log added",
		zap.String("log_id", id),
		zap.String("transport_id", transportID),
		zap.Float64("reading", reading),
		zap.Bool("violation", violation),
	)
	return tempLog, nil
}

// GetTemperatureLog retrieves a temperature log by ID.
func (e *Engine) GetTemperatureLog(ctx context.Context, id string) (*model.TemperatureLog, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return temperatures.get(e.read(ctx), id)
}

// GetTransportTemperatureLogs returns a transport's readings in the order
// they were recorded.
func (e *Engine) GetTransportTemperatureLogs(ctx context.Context, transportID string) ([]*model.TemperatureLog, error) {
	if err := NonEmpty(transportID, "transport_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := tempsByTransport.list(t, transportID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.TemperatureLog, 0, len(ids))
	for _, id := range ids {
		lg, err := temperatures.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, lg)
	}
	return out, nil
}
