package sim

import (
	"context"
	"math"

	"github.com/san-kum/linstab/internal/dynamo"
	"github.com/san-kum/linstab/internal/integrators"
)

type Simulator struct {
	sys        dynamo.System
	integrator integrators.Integrator
	controller dynamo.Controller
	metrics    []Metric
}

func New(sys dynamo.System, integrator integrators.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 for cfg.Duration. On divergence or cancellation the
// partial trajectory is returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := dynamo.CheckState(s.sys, x0); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	defer func() {
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	x := x0.Clone()
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, 0)

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		t := float64(i) * cfg.Dt

		u := s.controller.Compute(x, t)
		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}

		next := s.integrator.Step(s.sys, x, u, t, cfg.Dt)
		if !next.IsValid() || (cfg.Bound > 0 && next.Norm() > cfg.Bound) {
			return result, &StepError{Time: t, Step: i, Err: ErrDiverged}
		}

		x = next
		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t+cfg.Dt)
	}

	// observe the terminal state so settling metrics see where the run ended
	end := float64(steps) * cfg.Dt
	u := s.controller.Compute(x, end)
	for _, m := range s.metrics {
		m.Observe(x, u, end)
	}
	return result, nil
}
