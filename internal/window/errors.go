package window

import (
	"errors"
	"fmt"
)

// Window errors.
var (
	// ErrAllocation indicates a canvas could not be allocated. The tree is
	// left unchanged.
	ErrAllocation = errors.New("allocation failed")

	// ErrReleased indicates an operation on a window that has been destroyed.
	ErrReleased = errors.New("window released")

	// ErrDeviceUnavailable indicates the terminal device could not be
	// initialized or reports no usable area.
	ErrDeviceUnavailable = errors.New("terminal device unavailable")

	// ErrClosed indicates the context has been closed.
	ErrClosed = errors.New("context closed")
)

// OperationError records the window operation that failed.
type OperationError struct {
	Op     string // Operation name (e.g., "create", "resize")
	Target string // ID of the window the operation was applied to
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op string, w *Window, err error) error {
	target := ""
	if w != nil {
		target = w.id
	}
	return &OperationError{Op: op, Target: target, Err: err}
}
