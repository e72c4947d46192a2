package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSteps is returned when a machine is created without steps.
	ErrNoSteps = errors.New("wizard: a flow needs at least one step")
)

// ErrStepOutOfRange indicates a step index outside the flow.
type ErrStepOutOfRange struct {
	Index int
	Count int
}

func (e *ErrStepOutOfRange) Error() string {
	return fmt.Sprintf("wizard: step %d out of range (flow has %d steps)", e.Index, e.Count)
}

// ErrStepNotValid indicates an attempt to complete a step that has not
// passed validation.
type ErrStepNotValid struct {
	Index int
}

func (e *ErrStepNotValid) Error() string {
	return fmt.Sprintf("wizard: step %d cannot be completed while invalid", e.Index)
}

// ErrStepNotReachable indicates a navigation attempt blocked by the
// clickability gate.
type ErrStepNotReachable struct {
	Index int
}

func (e *ErrStepNotReachable) Error() string {
	return fmt.Sprintf("wizard: step %d is not reachable yet", e.Index)
}

func IsStepOutOfRangeError(err error) bool {
	var e *ErrStepOutOfRange
	return errors.As(err, &e)
}

func IsStepNotValidError(err error) bool {
	var e *ErrStepNotValid
	return errors.As(err, &e)
}

func IsStepNotReachableError(err error) bool {
	var e *ErrStepNotReachable
	return errors.As(err, &e)
}
