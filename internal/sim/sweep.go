package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/linstab/internal/dynamo"
)

// Factory builds an independent simulator per run; integrators and metrics
// carry per-run state.
type Factory func() *Simulator

// Sweep runs one simulation per initial state with at most workers runs in
// flight. Results keep the order of starts. A diverged run is recorded with
// its error and does not cancel the others.
func Sweep(ctx context.Context, newSim Factory, starts []dynamo.State, cfg Config, workers int) ([]*Result, []error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(starts))
	errs := make([]error, len(starts))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, x0 := range starts {
		g.Go(func() error {
			results[i], errs[i] = newSim().Run(ctx, x0, cfg)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// Perturbations returns target shifted by ±radius along each axis.
func Perturbations(target dynamo.State, radius float64) []dynamo.State {
	out := make([]dynamo.State, 0, 2*len(target))
	for i := range target {
		for _, sign := range []float64{1, -1} {
			x := target.Clone()
			x[i] += sign * radius
			out = append(out, x)
		}
	}
	return out
}
