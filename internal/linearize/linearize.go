// Package linearize computes exact Jacobians of a model at its equilibria.
package linearize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/algebra"
	"github.com/san-kum/linstab/internal/equilibrium"
	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/poly"
)

// ErrIndeterminateJacobian indicates a Jacobian entry that cannot be
// represented as a finite real number.
var ErrIndeterminateJacobian = errors.New("linearize: indeterminate jacobian")

// JacobianError wraps a linearization failure with the equilibrium index.
type JacobianError struct {
	Index   int
	Wrapped error
}

func (e *JacobianError) Error() string {
	return fmt.Sprintf("equilibrium %d: %v", e.Index, e.Wrapped)
}

func (e *JacobianError) Unwrap() error {
	return e.Wrapped
}

// Pair is the linearization x_dot = A x + B u about one equilibrium.
type Pair struct {
	A [2][2]algebra.Element
	B [2]algebra.Element
}

// Rows returns A as a slice of rows.
func (p Pair) Rows() [][]algebra.Element {
	return [][]algebra.Element{p.A[0][:], p.A[1][:]}
}

// Numeric converts the pair to float matrices. Non-real or non-finite
// entries fail with ErrIndeterminateJacobian.
func (p Pair) Numeric() (a, b *mat.Dense, err error) {
	a = mat.NewDense(2, 2, nil)
	b = mat.NewDense(2, 1, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := toFloat(p.A[i][j])
			if err != nil {
				return nil, nil, fmt.Errorf("A[%d][%d]: %w", i, j, err)
			}
			a.Set(i, j, v)
		}
		v, err := toFloat(p.B[i])
		if err != nil {
			return nil, nil, fmt.Errorf("B[%d]: %w", i, err)
		}
		b.Set(i, 0, v)
	}
	return a, b, nil
}

func toFloat(e algebra.Element) (float64, error) {
	if !e.IsReal() {
		return 0, fmt.Errorf("%w: %s is not real", ErrIndeterminateJacobian, e)
	}
	if r, ok := e.Rational(); ok {
		f, _ := r.Float64()
		if math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %s overflows", ErrIndeterminateJacobian, e)
		}
		return f, nil
	}
	f := real(e.Approx())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s has no finite value", ErrIndeterminateJacobian, e)
	}
	return f, nil
}

// Linearizer holds the symbolic Jacobian templates of one model. It is
// immutable and safe for concurrent use.
type Linearizer struct {
	alg  algebra.Algebra
	ring int
	a    [2][2]poly.MPoly
	b    [2]poly.MPoly
}

// New differentiates the model once; Jacobian only substitutes.
func New(m *model.Model) *Linearizer {
	return NewWith(m, algebra.Exact{})
}

func NewWith(m *model.Model, alg algebra.Algebra) *Linearizer {
	l := &Linearizer{alg: alg, ring: m.Ring().NumVars()}
	for i := 0; i < 2; i++ {
		f := m.Dynamics(i)
		l.a[i][0] = alg.Differentiate(f, model.X1)
		l.a[i][1] = alg.Differentiate(f, model.X2)
		l.b[i] = alg.Differentiate(f, model.U)
	}
	return l
}

// Templates returns the symbolic entries of A and B.
func (l *Linearizer) Templates() (a [2][2]string, b [2]string) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			a[i][j] = l.a[i][j].String()
		}
		b[i] = l.b[i].String()
	}
	return a, b
}

// Jacobian evaluates A and B at p with u = 0.
func (l *Linearizer) Jacobian(p equilibrium.Point) Pair {
	f := p.Field()
	pt := make([]algebra.Element, l.ring)
	for i := range pt {
		pt[i] = f.Zero()
	}
	pt[model.X1], pt[model.X2] = p.X1, p.X2

	var out Pair
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out.A[i][j] = l.alg.Substitute(l.a[i][j], pt)
		}
		out.B[i] = l.alg.Substitute(l.b[i], pt)
	}
	return out
}

// JacobianAll linearizes every point, preserving order.
func (l *Linearizer) JacobianAll(pts []equilibrium.Point) []Pair {
	out := make([]Pair, len(pts))
	for i, p := range pts {
		out[i] = l.Jacobian(p)
	}
	return out
}
