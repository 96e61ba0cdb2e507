package capture

import (
	"errors"
	"fmt"
)

// Terminal causes; match them with errors.Is
var (
	ErrDeviceFailure = errors.New("capture: device failure")
	ErrCancelled     = errors.New("capture: cancelled by operator")
	ErrTimeout       = errors.New("capture: timed out")
)

// Error is returned by Acquire for every failed capture
type Error struct {
	State State
	// Err is one of the sentinels above
	Err error
	// Cause is the underlying failure, if any
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Err, e.Cause)
	}
	return e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// StateOf returns the terminal state carried by err, Idle when err is not a capture error
func StateOf(err error) State {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.State
	}
	return Idle
}
