// Package algebra provides exact algebraic numbers for equilibrium analysis.
//
// Values live in number fields Q(α) = Q[t]/(h), each pinned to one root α of
// a squarefree polynomial h:
//
//   - [Field]: the field together with an isolating interval (real α) or a
//     polished approximation (complex α)
//   - [Element]: exact field arithmetic with decidable zero and sign tests
//   - [Eigenvalue] / [Spectrum]: exact 2x2 eigen-decomposition
//   - [SolveSystem]: common roots of two polynomials in two variables
//
// # Exactness
//
// Zero tests never round: an element vanishes iff the gcd of its
// representative with h has α as a root. Signs of real elements are decided
// by rational interval arithmetic. Only real parts over complex fields fall
// back to complex128, and they report [ErrIndeterminate] near zero.
package algebra

import "github.com/san-kum/linstab/internal/poly"

// Algebra is the symbolic capability the analysis stages depend on.
type Algebra interface {
	Differentiate(p poly.MPoly, variable int) poly.MPoly
	Substitute(p poly.MPoly, point []Element) Element
	SolveSystem(f, g poly.MPoly, x, y int) ([]Solution, error)
	EigenDecompose(a [][]Element) (Spectrum, error)
}

// Exact implements Algebra with exact rational arithmetic.
type Exact struct{}

var _ Algebra = Exact{}

func (Exact) Differentiate(p poly.MPoly, variable int) poly.MPoly { return p.Diff(variable) }

func (Exact) Substitute(p poly.MPoly, point []Element) Element { return Substitute(p, point) }

func (Exact) SolveSystem(f, g poly.MPoly, x, y int) ([]Solution, error) {
	return SolveSystem(f, g, x, y)
}

func (Exact) EigenDecompose(a [][]Element) (Spectrum, error) { return EigenDecompose(a) }
