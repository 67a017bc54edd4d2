package algebra

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
)

// numericTol is the relative threshold below which a numerically computed
// real part is considered indistinguishable from zero.
const numericTol = 1e-9

// Eigenvalue is one root of a 2x2 characteristic polynomial, written
// Center + Branch*sqrt(Radicand) with Center = trace/2 and
// Radicand = Center^2 - det. Branch is 0 when Center is the eigenvalue
// itself: a double root, or a diagonal entry of a triangular matrix.
type Eigenvalue struct {
	Center   Element
	Radicand Element
	Branch   int
}

// EigenEntry pairs an eigenvalue with its algebraic multiplicity.
type EigenEntry struct {
	Value        Eigenvalue
	Multiplicity int
}

// Spectrum lists the distinct eigenvalues of a matrix in a fixed order: the
// minus branch before the plus branch.
type Spectrum []EigenEntry

// EigenDecompose returns the exact spectrum of a 2x2 matrix.
func EigenDecompose(a [][]Element) (Spectrum, error) {
	if len(a) != 2 || len(a[0]) != 2 || len(a[1]) != 2 {
		return nil, fmt.Errorf("%w: want 2x2, got %dx%d", ErrDimension, len(a), cols(a))
	}
	half := big.NewRat(1, 2)
	trace := a[0][0].Add(a[1][1])
	det := a[0][0].Mul(a[1][1]).Sub(a[0][1].Mul(a[1][0]))
	center := trace.Scale(half)
	rad := center.Mul(center).Sub(det)
	if rad.IsZero() {
		return Spectrum{{Value: Eigenvalue{Center: center, Radicand: rad}, Multiplicity: 2}}, nil
	}
	minus := Eigenvalue{Center: center, Radicand: rad, Branch: -1}
	plus := Eigenvalue{Center: center, Radicand: rad, Branch: 1}
	if _, ok := rad.Rational(); !ok && a[0][1].Mul(a[1][0]).IsZero() {
		// Triangular: the radicand is ((a00 - a11)/2)^2 and the eigenvalues
		// are the diagonal entries, kept in branch order.
		lo, hi := a[1][1], a[0][0]
		if cmplx.Abs(lo.Approx()-minus.Approx()) > cmplx.Abs(hi.Approx()-minus.Approx()) {
			lo, hi = hi, lo
		}
		minus = Eigenvalue{Center: lo, Radicand: rad.Field().Zero()}
		plus = Eigenvalue{Center: hi, Radicand: rad.Field().Zero()}
	}
	return Spectrum{
		{Value: minus, Multiplicity: 1},
		{Value: plus, Multiplicity: 1},
	}, nil
}

func cols(a [][]Element) int {
	if len(a) == 0 {
		return 0
	}
	return len(a[0])
}

// Approx evaluates the eigenvalue in complex128.
func (v Eigenvalue) Approx() complex128 {
	c := v.Center.Approx()
	if v.Branch == 0 {
		return c
	}
	return c + complex(float64(v.Branch), 0)*cmplx.Sqrt(v.Radicand.Approx())
}

// RealPartSign returns the sign of Re(λ). The decision is exact when the
// center and radicand are real; otherwise it falls back to the complex128
// approximation and fails with ErrIndeterminate when the real part is within
// tolerance of zero.
func (v Eigenvalue) RealPartSign() (int, error) {
	if !v.Center.IsReal() || !v.Radicand.IsReal() {
		return v.numericRealSign()
	}
	sc, err := v.Center.Sign()
	if err != nil {
		return 0, err
	}
	if v.Branch == 0 {
		return sc, nil
	}
	sd, err := v.Radicand.Sign()
	if err != nil {
		return 0, err
	}
	if sd < 0 {
		return sc, nil
	}
	// Real pair c ± sqrt(d): compare sqrt(d) against |c| through d - c^2.
	gap, err := v.Radicand.Sub(v.Center.Mul(v.Center)).Sign()
	if err != nil {
		return 0, err
	}
	if v.Branch > 0 {
		if sc >= 0 {
			return 1, nil
		}
		return gap, nil
	}
	if sc <= 0 {
		return -1, nil
	}
	return -gap, nil
}

func (v Eigenvalue) numericRealSign() (int, error) {
	z := v.Approx()
	re := real(z)
	if math.IsNaN(re) || math.Abs(re) <= numericTol*math.Max(1, cmplx.Abs(z)) {
		return 0, fmt.Errorf("%w: Re(%s) ~ %g", ErrIndeterminate, v, re)
	}
	if re > 0 {
		return 1, nil
	}
	return -1, nil
}

// String renders the eigenvalue in radical form when the radicand is
// rational, and as center ± sqrt(radicand) otherwise.
func (v Eigenvalue) String() string {
	if v.Branch == 0 {
		return v.Center.String()
	}
	sign := big.NewRat(int64(v.Branch), 1)
	d, dok := v.Radicand.Rational()
	c, cok := v.Center.Rational()
	switch {
	case dok && cok:
		return formatSurd(c, sign, sqrtRat(d))
	case dok:
		root := formatSurd(new(big.Rat), sign, sqrtRat(d))
		if root[0] == '-' {
			return v.Center.String() + " - " + root[1:]
		}
		return v.Center.String() + " + " + root
	}
	op := " + "
	if v.Branch < 0 {
		op = " - "
	}
	return v.Center.String() + op + "sqrt(" + v.Radicand.String() + ")"
}
