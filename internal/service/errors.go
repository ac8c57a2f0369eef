package service

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP codes at the API layer
var (
	// ErrNotFound means the entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller's credential is missing or unknown
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is not allowed to touch the entity.
	// Ownership violations always fail closed with this error.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means the operation was attempted from an illegal source
	// state; data is never corrupted by it
	ErrConflict = errors.New("state conflict")
	// ErrRateLimited means the caller should back off; no queue state was
	// consumed
	ErrRateLimited = errors.New("too many requests")
)

// AdmissionError is a plan-limit or inactive-subscription rejection. The
// message names the specific limit and is surfaced verbatim to the caller.
type AdmissionError struct {
	Message string
}

func (e *AdmissionError) Error() string {
	return e.Message
}

// CollaboratorError wraps a failure of an external collaborator (search or
// text generation). It aborts only the single item being worked on.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsAdmission reports whether err is an admission rejection
func IsAdmission(err error) bool {
	var ae *AdmissionError
	return errors.As(err, &ae)
}

// IsCollaborator reports whether err is a collaborator failure
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
