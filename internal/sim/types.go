// Package sim integrates a closed-loop system forward in time. It is used
// to check numerically that a synthesized gain drives the nonlinear model
// back to the equilibrium it was designed for.
package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/linstab/internal/dynamo"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrDiverged      = errors.New("sim: state diverged")
)

type Metric interface {
	Name() string
	Observe(x dynamo.State, u dynamo.Control, t float64)
	Value() float64
	Reset()
}

type Config struct {
	Dt       float64
	Duration float64
	// Bound stops the run with ErrDiverged once |x| exceeds it. Zero
	// disables the check; NaN and Inf always stop the run.
	Bound float64
}

func DefaultConfig() Config {
	return Config{Dt: 0.01, Duration: 10, Bound: 1e6}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.Bound < 0 {
		return fmt.Errorf("%w: bound must not be negative, got %g", ErrInvalidConfig, c.Bound)
	}
	return nil
}

type Result struct {
	States     []dynamo.State
	Controls   []dynamo.Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// StepError locates a failed step.
type StepError struct {
	Time float64
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
