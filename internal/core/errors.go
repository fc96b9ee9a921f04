package core

import (
	"errors"
	"fmt"
)

// Domain errors shared by the solver and contact layers.
var (
	// ErrDimension indicates an input sequence or vector whose length does
	// not match the problem horizon or the state/control dimensions.
	ErrDimension = errors.New("croco: dimension mismatch")

	// ErrFrameNotFound indicates an invalid frame identifier.
	ErrFrameNotFound = errors.New("croco: frame not found")

	// ErrBadCallOrder indicates an operation invoked out of order, e.g.
	// querying the expected improvement before a direction was computed.
	ErrBadCallOrder = errors.New("croco: operation called out of order")

	// ErrComputation indicates a numerically singular or diverging system,
	// detected during a backward or forward pass.
	ErrComputation = errors.New("croco: numerical failure")
)

// StageError wraps a failure with the trajectory stage it occurred at.
type StageError struct {
	Stage int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
