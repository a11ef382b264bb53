// Package model defines the closed set of asset kinds tracked on the
// Agritrack ledger, their statuses, caller roles, typed errors, and the
// notification events emitted for off-ledger consumers.
package model

import "time"

// Kind discriminates the asset record types stored on the ledger.
// The set is closed: decode and dispatch boundaries switch over it
// exhaustively, so an unrecognized kind can never reach business logic.
type Kind string

const (
	KindProduct        Kind = "product"
	KindBatch          Kind = "batch"
	KindLifecycleEvent Kind = "lifecycle_event"
	KindTransport      Kind = "transport"
	KindTemperatureLog Kind = "temperature_log"
	KindProcessing     Kind = "processing"
	KindCertification  Kind = "certification"
	KindRegulatory     Kind = "regulatory"
)

// Product is a product type that batches are produced against.
// Products are never deleted; they are activated and deactivated.
type Product struct {
	Kind        Kind      `json:"kind"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Batch is a production batch of a product. BusinessNumber is unique across
// all batches, independently of the primary ID.
type Batch struct {
	Kind            Kind      `json:"kind"`
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	OwnerID         string    `json:"owner_id"`
	BusinessNumber  string    `json:"business_number"`
	Status          Status    `json:"status"`
	Quantity        int       `json:"quantity"`
	StartDate       string    `json:"start_date"`
	ExpectedEndDate string    `json:"expected_end_date"`
	ActualEndDate   string    `json:"actual_end_date,omitempty"`
	Location        string    `json:"location"`
	QRCode          string    `json:"qr_code,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LifecycleEvent records something that happened to a batch during
// production. Append-only: the contract surface has no update or delete
// for this kind.
type LifecycleEvent struct {
	Kind             Kind      `json:"kind"`
	ID               string    `json:"id"`
	BatchID          string    `json:"batch_id"`
	EventType        string    `json:"event_type"`
	Description      string    `json:"description"`
	RecordedBy       string    `json:"recorded_by"`
	EventDate        string    `json:"event_date"`
	QuantityAffected int       `json:"quantity_affected"`
	Metadata         string    `json:"metadata,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Transport is a transport manifest moving a batch between two parties.
type Transport struct {
	Kind                 Kind      `json:"kind"`
	ID                   string    `json:"id"`
	BatchID              string    `json:"batch_id"`
	FromPartyID          string    `json:"from_party_id"`
	ToPartyID            string    `json:"to_party_id"`
	VehicleID            string    `json:"vehicle_id"`
	DriverName           string    `json:"driver_name"`
	DepartureTime        string    `json:"departure_time"`
	ArrivalTime          string    `json:"arrival_time,omitempty"`
	OriginLocation       string    `json:"origin_location"`
	DestinationLocation  string    `json:"destination_location"`
	TemperatureMonitored bool      `json:"temperature_monitored"`
	Status               Status    `json:"status"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TemperatureLog is a cold-chain reading taken during a transport.
// Append-only. IsViolation is derived at write time from the safe range
// and is never recomputed afterwards.
type TemperatureLog struct {
	Kind        Kind      `json:"kind"`
	ID          string    `json:"id"`
	TransportID string    `json:"transport_id"`
	Reading     float64   `json:"reading"`
	Timestamp   string    `json:"timestamp"`
	Location    string    `json:"location"`
	IsViolation bool      `json:"is_violation"`
	CreatedAt   time.Time `json:"created_at"`
}

// Processing records the output of a processing facility for a batch.
// Mutable by full re-save; it has no status machine.
type Processing struct {
	Kind         Kind      `json:"kind"`
	ID           string    `json:"id"`
	BatchID      string    `json:"batch_id"`
	ProcessDate  string    `json:"process_date"`
	FacilityName string    `json:"facility_name"`
	OutputCount  int       `json:"output_count"`
	YieldKg      float64   `json:"yield_kg"`
	QualityScore float64   `json:"quality_score"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Certification is a certificate issued against a processing record.
// Issued directly APPROVED; its status machine allows revocation into
// PENDING/REJECTED cycles only from non-terminal states.
type Certification struct {
	Kind         Kind      `json:"kind"`
	ID           string    `json:"id"`
	ProcessingID string    `json:"processing_id"`
	CertType     string    `json:"cert_type"`
	Status       Status    `json:"status"`
	IssuedDate   string    `json:"issued_date"`
	ExpiryDate   string    `json:"expiry_date"`
	IssuerID     string    `json:"issuer_id"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegulatoryRecord is a regulatory approval attached to a batch.
// AuditFlags accumulates over the record's lifetime and is never truncated.
type RegulatoryRecord struct {
	Kind            Kind      `json:"kind"`
	ID              string    `json:"id"`
	BatchID         string    `json:"batch_id"`
	RecordType      string    `json:"record_type"`
	Status          Status    `json:"status"`
	IssuedDate      string    `json:"issued_date"`
	ExpiryDate      string    `json:"expiry_date"`
	RegulatorID     string    `json:"regulator_id"`
	Details         string    `json:"details,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	AuditFlags      []string  `json:"audit_flags,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
