// Package equilibrium finds the equilibria of a model by exact elimination.
package equilibrium

import (
	"errors"
	"fmt"

	"github.com/san-kum/linstab/internal/algebra"
	"github.com/san-kum/linstab/internal/model"
)

var (
	// ErrNoEquilibrium indicates the unforced dynamics have no common root.
	ErrNoEquilibrium = errors.New("equilibrium: no equilibrium points")

	// ErrInfiniteEquilibria indicates a continuum of equilibria.
	ErrInfiniteEquilibria = errors.New("equilibrium: infinitely many equilibria")

	// ErrDegenerateElimination indicates the elimination could not resolve
	// every root.
	ErrDegenerateElimination = errors.New("equilibrium: degenerate elimination")
)

// Point is an equilibrium (X1, X2). Both coordinates live in the same
// number field; rational points live in Q itself.
type Point struct {
	X1, X2 algebra.Element
}

// Field is the number field holding the coordinates.
func (p Point) Field() *algebra.Field { return p.X1.Field() }

// IsReal reports whether both coordinates are real.
func (p Point) IsReal() bool { return p.X1.IsReal() && p.X2.IsReal() }

// Approx evaluates the coordinates in complex128.
func (p Point) Approx() (complex128, complex128) { return p.X1.Approx(), p.X2.Approx() }

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X1, p.X2)
}

// Solver computes equilibria with a given algebra capability.
type Solver struct {
	alg algebra.Algebra
}

func NewSolver(alg algebra.Algebra) *Solver {
	if alg == nil {
		alg = algebra.Exact{}
	}
	return &Solver{alg: alg}
}

// Solve returns every complex solution of x1_dot = x2_dot = 0 at u = 0,
// ordered by (Re x1, Im x1, Re x2, Im x2).
func Solve(m *model.Model) ([]Point, error) {
	return NewSolver(nil).Solve(m)
}

func (s *Solver) Solve(m *model.Model) ([]Point, error) {
	sols, err := s.alg.SolveSystem(m.Unforced(0), m.Unforced(1), model.X1, model.X2)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Point, len(sols))
	for i, sol := range sols {
		out[i] = Point{X1: sol.X, X2: sol.Y}
	}
	return out, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, algebra.ErrNoSolution):
		return ErrNoEquilibrium
	case errors.Is(err, algebra.ErrInfiniteSolutions):
		return fmt.Errorf("%w: %w", ErrInfiniteEquilibria, err)
	case errors.Is(err, algebra.ErrDegenerate), errors.Is(err, algebra.ErrRootLocation):
		return fmt.Errorf("%w: %w", ErrDegenerateElimination, err)
	}
	return err
}
