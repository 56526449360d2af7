package sandbox

import (
	"errors"
	"fmt"
)

var (
	ErrSandboxViolation = errors.New("sandbox violation")
	ErrNotADirectory    = errors.New("not a directory")
)

// ViolationError reports a path that resolved into a forbidden root.
type ViolationError struct {
	Path string
	Root string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("Access to system folder blocked: %s", e.Root)
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrSandboxViolation
}

// RootError is returned when the workspace root cannot be prepared.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid workspace root %s: %v", e.Root, e.Cause)
}

func (e *RootError) Unwrap() error { return e.Cause }
