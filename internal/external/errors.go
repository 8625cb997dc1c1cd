// Package external holds the error type shared by widgets that call
// services outside the process (the assistant and the sync-status card).
// These failures stay with the widget that made the call; they never reach
// roadmap or progress state.
package external

import (
	"errors"
	"fmt"
)

// ServiceError reports that an external endpoint was unreachable, answered
// with a non-2xx status, or returned something unusable.
type ServiceError struct {
	Service    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Wrap returns err as a *ServiceError for service. nil stays nil and an
// existing ServiceError is returned unchanged.
func Wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Service: service, Err: err}
}

// Is reports whether err is or wraps a *ServiceError.
func Is(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
