package algebra

import (
	"math/big"
	"math/cmplx"

	"github.com/san-kum/linstab/internal/poly"
)

// maxRefine bounds the bisections a sign test may spend on a nonzero element.
const maxRefine = 1024

// Element is a member of a Field, stored as a polynomial in the generator
// reduced modulo the defining polynomial.
type Element struct {
	f *Field
	p poly.Poly
}

func (e Element) Field() *Field { return e.f }

// Poly returns the representative polynomial in the generator.
func (e Element) Poly() poly.Poly { return e.p }

func (e Element) check(o Element) {
	if e.f != o.f {
		panic("algebra: elements from different fields")
	}
}

func (e Element) Add(o Element) Element {
	e.check(o)
	return Element{f: e.f, p: e.p.Add(o.p)}
}

func (e Element) Sub(o Element) Element {
	e.check(o)
	return Element{f: e.f, p: e.p.Sub(o.p)}
}

func (e Element) Mul(o Element) Element {
	e.check(o)
	return e.f.Elem(e.p.Mul(o.p))
}

func (e Element) Neg() Element { return Element{f: e.f, p: e.p.Neg()} }

func (e Element) Scale(r *big.Rat) Element { return Element{f: e.f, p: e.p.Scale(r)} }

func (e Element) Pow(n int) Element {
	out := e.f.FromInt(1)
	for ; n > 0; n-- {
		out = out.Mul(e)
	}
	return out
}

// Inv returns the multiplicative inverse. It fails with ErrNotInvertible only
// when e vanishes.
func (e Element) Inv() (Element, error) {
	if e.IsZero() {
		return Element{}, ErrNotInvertible
	}
	m := e.f.min
	if g := poly.GCD(e.p, m); g.Degree() > 0 {
		// α is not a root of g, so it is a root of the cofactor, which is
		// coprime to the representative.
		m = m.Quo(g)
	}
	_, s, _ := poly.ExtGCD(e.p, m)
	return e.f.Elem(s), nil
}

// Rational returns the value of e when it lies in Q.
func (e Element) Rational() (*big.Rat, bool) {
	if e.p.Degree() <= 0 {
		return e.p.Coeff(0), true
	}
	return nil, false
}

// IsZero decides exactly whether e vanishes at the field's root.
func (e Element) IsZero() bool {
	if e.p.IsZero() {
		return true
	}
	if e.p.Degree() == 0 {
		return false
	}
	g := poly.GCD(e.p, e.f.min)
	if g.Degree() <= 0 {
		return false
	}
	return e.f.vanishes(g)
}

func (e Element) Equal(o Element) bool { return e.Sub(o).IsZero() }

// IsReal reports whether e is known to be real: it is rational or its field
// has a real generator.
func (e Element) IsReal() bool {
	if e.f.real {
		return true
	}
	_, ok := e.Rational()
	return ok
}

// Approx evaluates e in complex128.
func (e Element) Approx() complex128 {
	if r, ok := e.Rational(); ok {
		f, _ := r.Float64()
		return complex(f, 0)
	}
	z := e.p.EvalComplex(e.f.approx)
	if e.f.real {
		return complex(real(z), 0)
	}
	return z
}

// Sign returns the exact sign of a real element. Rational interval
// arithmetic on the isolating interval of the generator is refined until the
// enclosure excludes zero.
func (e Element) Sign() (int, error) {
	if r, ok := e.Rational(); ok {
		return r.Sign(), nil
	}
	if !e.f.real {
		return 0, ErrNotReal
	}
	if e.IsZero() {
		return 0, nil
	}
	iv := e.f.iv
	for i := 0; i < maxRefine; i++ {
		if iv.Exact() {
			return e.p.Eval(iv.Lo).Sign(), nil
		}
		lo, hi := poly.EvalInterval(e.p, iv)
		if lo.Sign() > 0 {
			return 1, nil
		}
		if hi.Sign() < 0 {
			return -1, nil
		}
		iv = poly.Bisect(e.f.min, iv)
	}
	return 0, ErrIndeterminate
}

func (e Element) String() string { return formatElement(e) }

func cmplxAbs(z complex128) float64 { return cmplx.Abs(z) }
