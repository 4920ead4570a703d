package contracts

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyMessage is returned when a nil message is handed to a send path.
	ErrEmptyMessage = errors.New("message must not be nil")
)

// TimeoutError reports that a bounded wait elapsed without a result.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("action timed out after %dms: %s", e.Timeout.Milliseconds(), e.Op)
}

// IsTimeout marks the error for callers checking via type assertion.
func (e *TimeoutError) IsTimeout() bool {
	return true
}

// NotFoundError reports that a named queue, correlation key or reference
// could not be resolved.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: '%s'", e.Kind, e.Name)
}

// DeliveryError reports that an underlying transport rejected a send.
type DeliveryError struct {
	Queue string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver message to queue '%s': %v", e.Queue, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}
