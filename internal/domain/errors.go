package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned by login for any username or password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Conflict resources named by ValidationError.
const (
	ResourceTime    = "time"
	ResourceTeacher = "teacher"
	ResourceRoom    = "room"
)

// ValidationError is a business-rule rejection of a candidate schedule entry.
// It never reaches persistence; the caller fixes the input and resubmits.
type ValidationError struct {
	Resource  string          `json:"resource"`
	Message   string          `json:"message"`
	Conflicts []ScheduleEntry `json:"conflicts,omitempty"`
	// Total and Capacity are set for capacity pooling rejections.
	Total    int `json:"total,omitempty"`
	Capacity int `json:"capacity,omitempty"`
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ConfigurationError reports reference data the validator needs but cannot resolve.
type ConfigurationError struct {
	RoomID  int64
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TransportError wraps a persistence gateway failure.
type TransportError struct {
	Op  string
	ID  int64
	Err error
}

func (e *TransportError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PartialDeletionError is returned when a group deletion aborts midway. Rows deleted
// before the failure stay deleted; nothing is rolled back.
type PartialDeletionError struct {
	Completed int
	Total     int
	FailedID  int64
	Err       error
}

func (e *PartialDeletionError) Error() string {
	return fmt.Sprintf("group deletion aborted after %d of %d entries (entry %d): %v", e.Completed, e.Total, e.FailedID, e.Err)
}

func (e *PartialDeletionError) Unwrap() error { return e.Err }

// ValidationResult is the caller-facing outcome of validating a candidate.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ResultFromError converts a validator error into a ValidationResult. Errors other than
// ValidationError and ConfigurationError are returned unchanged.
func ResultFromError(err error) (ValidationResult, error) {
	if err == nil {
		return ValidationResult{Valid: true}, nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ValidationResult{Valid: false, Message: ve.Message}, nil
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ValidationResult{Valid: false, Message: ce.Message}, nil
	}
	return ValidationResult{}, err
}
