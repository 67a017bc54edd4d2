package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/linstab/internal/algebra"
	"github.com/san-kum/linstab/internal/equilibrium"
	"github.com/san-kum/linstab/internal/linearize"
	"github.com/san-kum/linstab/internal/lqr"
	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/stability"
)

// ErrNilModel is reported when Run is called without a model.
var ErrNilModel = errors.New("pipeline: nil model")

// Config controls a run. The zero value is usable.
type Config struct {
	// Weights default to Q = I, R = [1].
	Weights lqr.Weights
	// Workers bounds per-equilibrium parallelism; values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
	Algebra algebra.Algebra
	Solver  lqr.Solver
}

func (c Config) withDefaults() Config {
	if c.Weights.Q == nil || c.Weights.R == nil {
		def := lqr.DefaultWeights(2, 1)
		if c.Weights.Q == nil {
			c.Weights.Q = def.Q
		}
		if c.Weights.R == nil {
			c.Weights.R = def.R
		}
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Algebra == nil {
		c.Algebra = algebra.Exact{}
	}
	if c.Solver == nil {
		c.Solver = lqr.Hamiltonian{}
	}
	return c
}

type runner struct {
	cfg Config
	m   *model.Model
	b   *Bundle
}

func (r *runner) enter(s Stage) {
	r.b.Trace = append(r.b.Trace, s)
	r.cfg.Logger.Debug("pipeline stage", "stage", s.String())
}

func (r *runner) finish(outcome Stage, err error) *Bundle {
	r.b.Outcome, r.b.Err = outcome, err
	if err != nil {
		r.cfg.Logger.Warn("pipeline failed", "err", err)
	}
	r.enter(outcome)
	r.enter(Done)
	return r.b
}

// Run analyzes m. It never panics on a stage failure: problems are recorded
// on the bundle, per entry where they concern one equilibrium.
func Run(ctx context.Context, m *model.Model, cfg Config) *Bundle {
	cfg = cfg.withDefaults()
	r := &runner{cfg: cfg, m: m, b: &Bundle{Model: m, Gain: Gain{Index: -1}}}
	r.enter(Init)
	if m == nil {
		return r.finish(Failed, ErrNilModel)
	}

	pts, err := equilibrium.NewSolver(cfg.Algebra).Solve(m)
	if errors.Is(err, equilibrium.ErrNoEquilibrium) {
		return r.finish(NoEquilibrium, nil)
	}
	if err != nil {
		return r.finish(Failed, err)
	}
	r.b.Entries = make([]Entry, len(pts))
	for i, p := range pts {
		r.b.Entries[i] = Entry{Index: i, Point: p}
	}
	r.enter(EquilibriaSolved)

	if err := r.perEntry(ctx); err != nil {
		r.b.Entries = nil
		return r.finish(Failed, err)
	}

	idx := -1
	for i, e := range r.b.Entries {
		if e.Err == nil && e.Label == stability.Unstable {
			idx = i
			break
		}
	}
	if idx < 0 {
		return r.finish(NoGainNeeded, nil)
	}

	r.b.Gain.Index = idx
	a, b, err := r.b.Entries[idx].Jacobian.Numeric()
	if err != nil {
		r.b.Gain.Err = &linearize.JacobianError{Index: idx, Wrapped: err}
		cfg.Logger.Warn("gain synthesis skipped", "index", idx, "err", err)
		return r.finish(GainFailed, nil)
	}
	k, err := lqr.SynthesizeWith(cfg.Solver, a, b, cfg.Weights)
	if err != nil {
		r.b.Gain.Err = fmt.Errorf("equilibrium %d: %w", idx, err)
		cfg.Logger.Warn("gain synthesis failed", "index", idx, "err", err)
		return r.finish(GainFailed, nil)
	}
	r.b.Gain.K = k
	cfg.Logger.Debug("gain computed", "index", idx)
	return r.finish(GainComputed, nil)
}

// perEntry linearizes and classifies every equilibrium. Entry-level
// failures are stored on the entry; only cancellation aborts.
func (r *runner) perEntry(ctx context.Context) error {
	lin := linearize.NewWith(r.m, r.cfg.Algebra)
	cls := stability.NewClassifier(r.cfg.Algebra)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range r.b.Entries {
		e := &r.b.Entries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.Jacobian = lin.Jacobian(e.Point)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.enter(Linearized)

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range r.b.Entries {
		e := &r.b.Entries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := cls.Classify(e.Jacobian.Rows())
			e.Spectrum, e.Label = res.Spectrum, res.Label
			if err != nil {
				e.Err = fmt.Errorf("equilibrium %d: %w", e.Index, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, e := range r.b.Entries {
		if e.Err != nil {
			r.cfg.Logger.Warn("classification failed", "index", e.Index, "err", e.Err)
		}
	}
	r.enter(Classified)
	return nil
}
