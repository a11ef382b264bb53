package model

import "fmt"

// AuthorizationError is returned when the caller's role does not satisfy the
// role required by the operation.
type AuthorizationError struct {
	Caller   Role
	Required Role
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("unauthorized: role %q not allowed, required %q or %q", e.Caller, e.Required, RoleAdmin)
}

// ValidationError is returned when a field value is empty, negative, or
// otherwise malformed. Validation always happens before any state is staged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a queried record is absent, or when a
// referenced parent record does not exist at create time.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConflictError is returned when a primary ID or a unique secondary field
// value is already taken.
type ConflictError struct {
	Kind  Kind
	Field string // "id" or the unique field name
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Kind, e.Field, e.Value)
}

// TransitionError is returned when a status change is not present in the
// transition table for the asset kind, including transitions out of a
// terminal status and transitions from an unknown status.
type TransitionError struct {
	Kind Kind
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: invalid status transition %s -> %s", e.Kind, e.From, e.To)
}

// SerializationError is returned when a stored record cannot be encoded or
// decoded. It indicates corrupted state or a version mismatch, not caller error.
type SerializationError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %q: serialization failed: %v", e.Kind, e.ID, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
