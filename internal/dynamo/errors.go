package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for numeric operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// DimensionError wraps ErrDimensionMismatch with the offending sizes.
type DimensionError struct {
	What      string
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s has dimension %d, want %d", ErrDimensionMismatch, e.What, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// CheckState validates x against a system's state dimension.
func CheckState(sys System, x State) error {
	if len(x) != sys.StateDim() {
		return &DimensionError{What: "state", Want: sys.StateDim(), Got: len(x)}
	}
	if !x.IsValid() {
		return ErrInvalidState
	}
	return nil
}
