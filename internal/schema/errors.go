package schema

import (
	"errors"
	"fmt"
)

// Phase identifies where convergence of a node failed.
type Phase string

const (
	// PhaseCheck covers the check query and the CheckFunc.
	PhaseCheck Phase = "check"

	// PhaseMeet covers corrective statements and post-mutation verification.
	PhaseMeet Phase = "meet"
)

// ErrVerificationFailed is the cause of a meet error when the object still
// needs corrective statements after they were applied.
var ErrVerificationFailed = errors.New("verification failed")

// StateError reports the node and phase at which convergence stopped.
type StateError struct {
	// Phase is PhaseCheck or PhaseMeet.
	Phase Phase

	// Name is the name of the offending node.
	Name string

	// Err is the underlying database or check failure.
	Err error
}

// Error implements the error interface.
func (e *StateError) Error() string {
	switch e.Phase {
	case PhaseCheck:
		return fmt.Sprintf("error checking schema state for '%s': %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("error meeting schema state for '%s': %v", e.Name, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *StateError) Unwrap() error {
	return e.Err
}

func checkError(name string, err error) *StateError {
	return &StateError{Phase: PhaseCheck, Name: name, Err: err}
}

func meetError(name string, err error) *StateError {
	return &StateError{Phase: PhaseMeet, Name: name, Err: err}
}

// IsCheckError returns true if err is a StateError from the check phase.
// Uses errors.As to handle wrapped errors.
func IsCheckError(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Phase == PhaseCheck
	}
	return false
}

// IsMeetError returns true if err is a StateError from the meet phase.
// Uses errors.As to handle wrapped errors.
func IsMeetError(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Phase == PhaseMeet
	}
	return false
}
