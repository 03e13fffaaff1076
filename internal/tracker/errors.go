// Package tracker manages a user's ordered list of job applications on top of
// a remote table store.
package tracker

import "fmt"

// ValidationError is returned when caller input is rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// LoadFailedError is returned when the list could not be fetched. The list is unchanged.
type LoadFailedError struct {
	OwnerID string
	Cause   error
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("failed to load applications for %s: %v", e.OwnerID, e.Cause)
}

func (e *LoadFailedError) Unwrap() error {
	return e.Cause
}

// AddFailedError is returned when the store rejected an insert or returned an
// unusable row. The list is unchanged.
type AddFailedError struct {
	Company string
	Cause   error
}

func (e *AddFailedError) Error() string {
	return fmt.Sprintf("failed to add application at %s: %v", e.Company, e.Cause)
}

func (e *AddFailedError) Unwrap() error {
	return e.Cause
}

// DeleteFailedError is returned when the store rejected a delete. The list is unchanged.
type DeleteFailedError struct {
	ID    string
	Cause error
}

func (e *DeleteFailedError) Error() string {
	return fmt.Sprintf("failed to delete application %s: %v", e.ID, e.Cause)
}

func (e *DeleteFailedError) Unwrap() error {
	return e.Cause
}

// MalformedRecordError is returned when a store row cannot be mapped to an Application.
type MalformedRecordError struct {
	ID      string
	Message string
	Cause   error
}

func (e *MalformedRecordError) Error() string {
	id := e.ID
	if id == "" {
		id = "(unknown)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("malformed application record %s: %s: %v", id, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed application record %s: %s", id, e.Message)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}
