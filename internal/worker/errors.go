package worker

import (
	"errors"
	"fmt"
)

// ProcessingError classifies a failed message. Retryable failures are
// requeued until MaxAttempts; the rest go straight to the DLQ.
type ProcessingError struct {
	Err       error
	Retryable bool
}

func (e *ProcessingError) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("%s: %v", kind, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func retryable(err error) error {
	return &ProcessingError{Err: err, Retryable: true}
}

func fatal(err error) error {
	return &ProcessingError{Err: err}
}

// isRetryable treats unclassified errors (store failures, panics) as retryable.
func isRetryable(err error) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}
