package model

// Role is the organizational role asserted for a caller by the host
// environment. The core never authenticates; it only compares roles.
type Role string

const (
	// RoleProducer may create batches, lifecycle events, transports,
	// temperature logs, and processing records.
	RoleProducer Role = "producer"
	// RoleInspector may manage products, certifications, and regulatory records.
	RoleInspector Role = "inspector"
	// RoleAdmin satisfies every role check.
	RoleAdmin Role = "admin"
	// RoleAny marks operations open to any authenticated caller.
	RoleAny Role = "any"
)

// Status is a lifecycle status of a mutable asset.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
)
