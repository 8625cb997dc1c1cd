package progress

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by mutating calls after Close.
var ErrClosed = errors.New("progress store is closed")

// LoadError reports that persisted progress could not be fully read. The
// store still opens; unreadable entries are dropped and out-of-range values
// are clamped.
type LoadError struct {
	Key     string
	Err     error    // non-nil when the whole value was unusable
	Dropped []string // ids whose value was not a number
	Clamped []string // ids whose value was outside [0, 100]
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load progress %q: %v", e.Key, e.Err)
	}
	var parts []string
	if len(e.Dropped) > 0 {
		parts = append(parts, fmt.Sprintf("dropped %s", strings.Join(e.Dropped, ", ")))
	}
	if len(e.Clamped) > 0 {
		parts = append(parts, fmt.Sprintf("clamped %s", strings.Join(e.Clamped, ", ")))
	}
	return fmt.Sprintf("load progress %q: %s", e.Key, strings.Join(parts, "; "))
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PersistError reports that an update could not be written. The in-memory
// value was still updated and subscribers were notified.
type PersistError struct {
	Key string
	ID  string // empty for Reset
	Err error
}

func (e *PersistError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persist progress %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("persist progress %q (item %q): %v", e.Key, e.ID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
