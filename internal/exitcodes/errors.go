package exitcodes

import (
	"errors"
	"fmt"
)

// RuntimeError is an operational failure that leads to exit code RuntimeErr:
// unreadable configuration, missing binaries, a run that could not complete.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// TestFailureError means the run completed but not every testcase succeeded.
type TestFailureError struct {
	Failed int
	Total  int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d of %d testcases failed", e.Failed, e.Total)
}

func NewTestFailureError(failed, total int) *TestFailureError {
	return &TestFailureError{Failed: failed, Total: total}
}

// Code maps an error returned by a command onto an exit code.
func Code(err error) int {
	var runtimeErr *RuntimeError
	var testErr *TestFailureError
	switch {
	case err == nil:
		return Success
	case errors.As(err, &testErr):
		return TestFailure
	case errors.As(err, &runtimeErr):
		return RuntimeErr
	default:
		return RuntimeErr
	}
}
