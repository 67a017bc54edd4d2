package algebra

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/san-kum/linstab/internal/poly"
)

// Solution is one common root (X, Y) of a two-equation system. Both
// coordinates live in Field.
type Solution struct {
	Field *Field
	X, Y  Element
}

// SolveSystem returns every common complex root of f and g in the variables
// x and y. Elimination of y yields the resultant R(x); y follows from the
// equation of degree one in y when there is one, otherwise from the first
// subresultant. Each candidate is verified exactly before it is reported.
// Solutions are ordered by (Re X, Im X, Re Y, Im Y).
//
// When a fibre over an irrational x cannot be resolved the system is sheared
// by x -> x + c*y for c = 1, 2, ... and solved again; the shear separates the
// solutions by their first coordinate.
func SolveSystem(f, g poly.MPoly, x, y int) ([]Solution, error) {
	out, err := eliminate(f, g, x, y)
	for c := int64(1); errors.Is(err, ErrDegenerate) && c <= maxShear; c++ {
		out, err = solveSheared(f, g, x, y, c)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return lessSolution(out[i], out[j]) })
	return out, nil
}

const maxShear = 16

func solveSheared(f, g poly.MPoly, x, y int, c int64) ([]Solution, error) {
	sols, err := eliminate(shear(f, x, y, c), shear(g, x, y, c), x, y)
	if err != nil {
		return nil, err
	}
	k := big.NewRat(c, 1)
	out := make([]Solution, 0, len(sols))
	for _, s := range sols {
		sol := Solution{Field: s.Field, X: s.X.Add(s.Y.Scale(k)), Y: s.Y}
		if !verify(sol, x, y, f, g) {
			return nil, fmt.Errorf("%w: shear %d lost a solution", ErrDegenerate, c)
		}
		out = append(out, sol)
	}
	return out, nil
}

// shear substitutes x + c*y for x in p.
func shear(p poly.MPoly, x, y int, c int64) poly.MPoly {
	r := p.Ring()
	sx := r.Var(x).Add(r.Var(y).Scale(big.NewRat(c, 1)))
	out := r.Zero()
	for _, t := range p.Terms() {
		term := r.Const(t.Coeff)
		for k, e := range t.Mono {
			if e == 0 {
				continue
			}
			v := r.Var(k)
			if k == x {
				v = sx
			}
			term = term.Mul(v.Pow(e))
		}
		out = out.Add(term)
	}
	return out
}

// eliminate solves f = g = 0 without reordering the solutions.
func eliminate(f, g poly.MPoly, x, y int) ([]Solution, error) {
	fy, err := splitIn(f, x, y)
	if err != nil {
		return nil, err
	}
	gy, err := splitIn(g, x, y)
	if err != nil {
		return nil, err
	}
	if len(fy) == 0 || len(gy) == 0 {
		other := fy
		if len(fy) == 0 {
			other = gy
		}
		if len(other) == 1 && other[0].Degree() == 0 {
			return nil, ErrNoSolution
		}
		return nil, ErrInfiniteSolutions
	}

	m, n := len(fy)-1, len(gy)-1
	var res, s1, s0 poly.Poly
	switch {
	case m == 0 && n == 0:
		if poly.GCD(fy[0], gy[0]).Degree() > 0 {
			return nil, ErrInfiniteSolutions
		}
		return nil, ErrNoSolution
	case m == 0:
		res = fy[0]
		if n == 1 {
			s1, s0 = gy[1], gy[0]
		}
	case n == 0:
		res = gy[0]
		if m == 1 {
			s1, s0 = fy[1], fy[0]
		}
	default:
		res = poly.Resultant(fy, gy)
		switch {
		case n == 1:
			s1, s0 = gy[1], gy[0]
		case m == 1:
			s1, s0 = fy[1], fy[0]
		default:
			sub := poly.Subresultant(fy, gy, 1)
			s0, s1 = sub[0], sub[1]
		}
	}
	if res.IsZero() {
		return nil, ErrInfiniteSolutions
	}
	if res.Degree() == 0 {
		return nil, ErrNoSolution
	}

	sf := res.SquareFree()
	generic, special := sf, poly.FromInts(1)
	if s1.IsZero() {
		generic, special = poly.FromInts(1), sf
	} else if shared := poly.GCD(sf, s1); shared.Degree() > 0 {
		generic, special = sf.Quo(shared), shared
	}

	var out []Solution
	if generic.Degree() > 0 {
		fields, err := Roots(generic)
		if err != nil {
			return nil, err
		}
		for _, fd := range fields {
			inv, err := fd.Elem(s1).Inv()
			if err != nil {
				return nil, fmt.Errorf("solve: shape coefficient at %s: %w", fd, err)
			}
			sol := Solution{Field: fd, X: fd.Gen(), Y: fd.Elem(s0).Neg().Mul(inv)}
			if verify(sol, x, y, f, g) {
				out = append(out, sol)
			}
		}
	}
	if special.Degree() > 0 {
		rats := special.RationalRoots()
		if special.DeflateRoots(rats).Degree() > 0 {
			return nil, fmt.Errorf("%w: irrational roots of %s", ErrDegenerate, special)
		}
		for _, r := range rats {
			fr, _ := f.Substitute(x, r).Univariate(y)
			gr, _ := g.Substitute(x, r).Univariate(y)
			common := poly.GCD(fr, gr)
			if common.IsZero() {
				return nil, ErrInfiniteSolutions
			}
			if common.Degree() == 0 {
				continue
			}
			fields, err := Roots(common)
			if err != nil {
				return nil, err
			}
			for _, fd := range fields {
				sol := Solution{Field: fd, X: fd.FromRat(r), Y: fd.Gen()}
				if verify(sol, x, y, f, g) {
					out = append(out, sol)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSolution
	}
	return out, nil
}

// splitIn views p as a polynomial in y with coefficients in Q[x].
func splitIn(p poly.MPoly, x, y int) ([]poly.Poly, error) {
	parts := p.CoefficientsIn(y)
	out := make([]poly.Poly, len(parts))
	for k, c := range parts {
		u, ok := c.Univariate(x)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrForeignVariable, p)
		}
		out[k] = u
	}
	return out, nil
}

func verify(s Solution, x, y int, eqs ...poly.MPoly) bool {
	for _, e := range eqs {
		pt := make([]Element, e.Ring().NumVars())
		for i := range pt {
			pt[i] = s.Field.Zero()
		}
		pt[x], pt[y] = s.X, s.Y
		if !Substitute(e, pt).IsZero() {
			return false
		}
	}
	return true
}

func lessSolution(a, b Solution) bool {
	ka := [4]float64{real(a.X.Approx()), imag(a.X.Approx()), real(a.Y.Approx()), imag(a.Y.Approx())}
	kb := [4]float64{real(b.X.Approx()), imag(b.X.Approx()), real(b.Y.Approx()), imag(b.Y.Approx())}
	for i := range ka {
		if math.Abs(ka[i]-kb[i]) > orderTol*(1+math.Abs(ka[i])) {
			return ka[i] < kb[i]
		}
	}
	return false
}

// orderTol absorbs rounding when the same coordinate is reached through
// different field elements.
const orderTol = 1e-9

// Substitute evaluates p at a point given as one element per ring variable,
// all from the same field.
func Substitute(p poly.MPoly, pt []Element) Element {
	f := pt[0].Field()
	sum := f.Zero()
	for _, t := range p.Terms() {
		term := f.FromRat(t.Coeff)
		for k, e := range t.Mono {
			if e > 0 {
				term = term.Mul(pt[k].Pow(e))
			}
		}
		sum = sum.Add(term)
	}
	return sum
}
