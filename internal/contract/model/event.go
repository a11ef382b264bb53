package model

// EventType names a notification emitted for off-ledger listeners.
type EventType string

const (
	EventProductCreated       EventType = "ProductCreated"
	EventBatchCreated         EventType = "BatchCreated"
	EventBatchStatusChanged   EventType = "BatchStatusChanged"
	EventLifecycleRecorded    EventType = "LifecycleEventRecorded"
	EventTransportCreated     EventType = "TransportCreated"
	EventTransportStatus      EventType = "TransportStatusChanged"
	EventTemperatureViolation EventType = "TemperatureViolationDetected"
	EventProcessingRecorded   EventType = "ProcessingRecorded"
	EventCertificationUpdated EventType = "CertificationUpdated"
	EventRegulatoryUpdated    EventType = "RegulatoryRecordUpdated"
)

// Event is a typed notification describing a significant state change.
// Events are observability only: no invariant may depend on one being seen.
type Event struct {
	Type    EventType         `json:"type"`
	TxID    string            `json:"tx_id"`
	Payload map[string]string `json:"payload"`
}
