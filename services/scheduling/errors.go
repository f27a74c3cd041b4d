package scheduling

import "fmt"

// The four failure kinds the booking UI must keep apart: bad input, a failed
// availability query, a slot lost to a concurrent booking, and a transient
// provider fault. Collapsing them into one generic error is a design error.

// ValidationError reports malformed or out-of-policy input. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AvailabilityQueryError means the calendar could not be queried at all.
// Distinct from a successful query returning zero free slots.
type AvailabilityQueryError struct {
	Err error
}

func (e *AvailabilityQueryError) Error() string {
	return fmt.Sprintf("availability query failed: %v", e.Err)
}

func (e *AvailabilityQueryError) Unwrap() error { return e.Err }

// SchedulingConflictError means the provider rejected the booking because the
// slot was claimed between the availability check and the schedule call. The
// caller must re-resolve availability before another attempt on that date,
// not retry the same slot.
type SchedulingConflictError struct {
	Message string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("slot no longer available: %s", e.Message)
}

// SchedulingProviderError is a transient provider fault. A retry is allowed,
// but only after checking whether the original attempt actually created a
// confirmation (there is no idempotency key on the provider side).
type SchedulingProviderError struct {
	Err error
}

func (e *SchedulingProviderError) Error() string {
	return fmt.Sprintf("scheduling provider failed: %v", e.Err)
}

func (e *SchedulingProviderError) Unwrap() error { return e.Err }
