package api

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUserCancelled is returned when the user dismisses a prompt without
	// providing input.
	ErrUserCancelled = errors.New("action cancelled by user")

	// ErrNoSelection is returned when a selection sheet is closed without
	// an item being chosen.
	ErrNoSelection = errors.New("selection sheet closed without a choice")

	// ErrBusy is returned when a workflow is started while another one is
	// still active.
	ErrBusy = errors.New("another workflow is already running")

	// ErrUnknownWorkflow is returned when an action name is not registered.
	ErrUnknownWorkflow = errors.New("unknown workflow")
)

// ErrCancelled marks a pending wait that was abandoned because its context
// ended. It matches both errors.Is(err, ErrCancelled) and the underlying
// context error.
var ErrCancelled = errors.New("operation cancelled")

type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string {
	return ErrCancelled.Error()
}

func (e *cancelledError) Unwrap() []error {
	return []error{ErrCancelled, e.cause}
}

// NewCancelledError wraps a context error as a cancelled wait.
func NewCancelledError(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return &cancelledError{cause: cause}
}

// SDKError is an opaque failure reported by the identity SDK.
type SDKError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *SDKError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + " failed"
	}
}

func (e *SDKError) Unwrap() error { return e.Err }

// IsSDKError returns the *SDKError in err's chain, if any.
func IsSDKError(err error) (*SDKError, bool) {
	var s *SDKError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// PreconditionUnavailableError is returned when something a workflow needs
// to present UI (a camera, a presenter) is missing.
type PreconditionUnavailableError struct {
	What string
}

func (e *PreconditionUnavailableError) Error() string {
	return "cannot open " + e.What
}

// PanicError carries a panic recovered from a workflow.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workflow panicked: %v", e.Value)
}
