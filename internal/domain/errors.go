package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when an operation requires a logged-in
// actor and none is present.
var ErrUnauthenticated = errors.New("not logged in")

// ValidationError reports the first submission field that failed
// validation. Field names match the JSON field names of Listing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %q", e.Field)
}

// PermissionDenied reports that the actor may not perform the action
// on the target listing.
type PermissionDenied struct {
	Action Action
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

// NotFound reports that no listing exists under the given id.
type NotFound struct {
	ID string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("listing %s not found", e.ID)
}

// LimitExceeded reports that a bounded resource is full.
type LimitExceeded struct {
	Resource string
	Limit    int
}

func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("%s limit exceeded (max %d)", e.Resource, e.Limit)
}

// StorageFailure wraps an error from the persistent store. Mutating
// operations surface it as an advisory: the in-memory result still
// stands, but persistence across restarts is not guaranteed.
type StorageFailure struct {
	Key string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("storage failure on %q: %v", e.Key, e.Err)
}

func (e *StorageFailure) Unwrap() error { return e.Err }
