// Package cubeaccess provides lazy, metadata-driven access to coordinate
// axes and measurement variables stored in per-file containers.
package cubeaccess

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnknownAxis          = errors.New("unknown axis")
	ErrUnknownVariable      = errors.New("unknown variable")
	ErrShapeMismatch        = errors.New("destination does not match selection")
	ErrContainerUnavailable = errors.New("container unavailable")
	ErrUnsupportedType      = errors.New("unsupported element type")
)

// OpError records the operation, container and field that failed.
type OpError struct {
	Op      string
	Locator string
	Name    string
	Err     error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Locator, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Locator, e.Name, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
