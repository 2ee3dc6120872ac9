package monitor

import (
	"errors"
	"fmt"

	"github.com/slok/taskmon/internal/model"
)

var (
	// ErrNotAllowed is returned when a command preconditions are not met, no call is made.
	ErrNotAllowed = errors.New("command not allowed")
	// ErrInFlight is returned when the same kind of operation is already running.
	ErrInFlight = errors.New("operation already in flight")
	// ErrDisposed is returned when the engine has been disposed.
	ErrDisposed = errors.New("engine disposed")
	// ErrStaleSnapshot is returned when a snapshot is older than the one already stored.
	ErrStaleSnapshot = errors.New("stale snapshot")
)

// DecodeError is returned when a snapshot has an unknown status.
type DecodeError struct {
	TaskID string
	Status string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode task %s snapshot: unknown status %q", e.TaskID, e.Status)
}

func (e *DecodeError) Unwrap() error { return model.ErrNotValid }
