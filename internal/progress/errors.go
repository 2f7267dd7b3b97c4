package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// case's current state, e.g. a solution before the root cause.
	ErrInvalidState = errors.New("invalid case state")

	// ErrCaseClosed is returned for submissions on a solved or given-up
	// case. It matches ErrInvalidState with errors.Is.
	ErrCaseClosed = fmt.Errorf("%w: case is closed", ErrInvalidState)

	// ErrEmptySubmission is returned for blank submission text.
	ErrEmptySubmission = errors.New("submission text is empty")

	// ErrInvalidPhase is returned for a phase other than 1 or 2.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrUnknownHint is returned when a case does not define the hint.
	ErrUnknownHint = errors.New("unknown hint")
)
