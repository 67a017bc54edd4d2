package algebra

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/san-kum/linstab/internal/poly"
	"gonum.org/v1/gonum/mat"
)

// approxWidth is the isolating interval width kept on real fields; it makes
// Approx accurate to float64 precision. Sign tests refine further on demand.
var approxWidth = new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 64))

// Field is Q(α) presented as Q[t]/(h) for a monic squarefree h, together
// with the particular root α of h it is evaluated at. h need not be
// irreducible: zero tests split it on demand by gcd, so arithmetic stays
// exact either way. A Field is immutable.
type Field struct {
	min   poly.Poly
	index int

	real   bool
	iv     poly.Interval
	approx complex128
}

// NewRationalField returns Q, presented as Q[t]/(t - r) so that the
// generator evaluates to r.
func NewRationalField(r *big.Rat) *Field {
	v := new(big.Rat).Set(r)
	f, _ := v.Float64()
	return &Field{
		min:    poly.New(new(big.Rat).Neg(v), big.NewRat(1, 1)),
		real:   true,
		iv:     poly.Interval{Lo: v, Hi: new(big.Rat).Set(v)},
		approx: complex(f, 0),
	}
}

func newRealField(h poly.Poly, iv poly.Interval, index int) *Field {
	iv = poly.Refine(h, iv, approxWidth)
	mid := new(big.Rat).Add(iv.Lo, iv.Hi)
	mid.Mul(mid, big.NewRat(1, 2))
	f, _ := mid.Float64()
	if iv.Exact() {
		return NewRationalField(iv.Lo)
	}
	return &Field{min: h, index: index, real: true, iv: iv, approx: complex(f, 0)}
}

func newComplexField(h poly.Poly, z complex128, index int) *Field {
	return &Field{min: h, index: index, approx: z}
}

// MinPoly returns the defining polynomial h.
func (f *Field) MinPoly() poly.Poly { return f.min }

// Degree is the degree of the defining polynomial.
func (f *Field) Degree() int { return f.min.Degree() }

// IsRational reports whether the field is Q itself.
func (f *Field) IsRational() bool { return f.min.Degree() == 1 }

// IsReal reports whether the generator is a real number.
func (f *Field) IsReal() bool { return f.real }

// Approx returns a floating point approximation of the generator.
func (f *Field) Approx() complex128 { return f.approx }

// Gen returns the generator α as an element.
func (f *Field) Gen() Element { return f.Elem(poly.X()) }

func (f *Field) Elem(p poly.Poly) Element { return Element{f: f, p: p.Rem(f.min)} }

func (f *Field) FromRat(r *big.Rat) Element { return f.Elem(poly.Const(r)) }

func (f *Field) FromInt(n int64) Element { return f.Elem(poly.FromInts(n)) }

func (f *Field) Zero() Element { return Element{f: f} }

func (f *Field) String() string {
	if f.IsRational() {
		return "QQ"
	}
	return fmt.Sprintf("QQ<%s>", rootString(f))
}

func rootString(f *Field) string {
	return fmt.Sprintf("CRootOf(%s, %d)", f.min.Format("x"), f.index)
}

// vanishes reports whether g, a divisor of the defining polynomial, has the
// generator as a root.
func (f *Field) vanishes(g poly.Poly) bool {
	if f.real {
		if f.iv.Exact() {
			return g.Eval(f.iv.Lo).Sign() == 0
		}
		return poly.CountRealRoots(g, f.iv.Lo, f.iv.Hi) == 1
	}
	cof := f.min.Quo(g)
	return cmplxAbs(g.EvalComplex(f.approx)) < cmplxAbs(cof.EvalComplex(f.approx))
}

// Roots returns one field per root of the squarefree polynomial p, ordered by
// real part then imaginary part of the root. Rational roots yield Q.
func Roots(p poly.Poly) ([]*Field, error) {
	p = p.SquareFree()
	if p.Degree() <= 0 {
		return nil, nil
	}
	rats := p.RationalRoots()
	var out []*Field
	for _, r := range rats {
		out = append(out, NewRationalField(r))
	}
	h := p.DeflateRoots(rats).Monic()
	if h.Degree() <= 0 {
		return out, nil
	}
	ivs := poly.RealRootIntervals(h)
	for i, iv := range ivs {
		out = append(out, newRealField(h, iv, i))
	}
	if nc := h.Degree() - len(ivs); nc > 0 {
		zs, err := complexRoots(h, nc)
		if err != nil {
			return nil, err
		}
		for i, z := range zs {
			out = append(out, newComplexField(h, z, len(ivs)+i))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].approx, out[j].approx
		if real(a) != real(b) {
			return real(a) < real(b)
		}
		return imag(a) < imag(b)
	})
	return out, nil
}

// complexRoots approximates the n non-real roots of the monic polynomial h
// from the eigenvalues of its companion matrix, polished by Newton steps.
func complexRoots(h poly.Poly, n int) ([]complex128, error) {
	d := h.Degree()
	c := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		v, _ := h.Coeff(i).Float64()
		c.Set(i, d-1, -v)
		if i > 0 {
			c.Set(i, i-1, 1)
		}
	}
	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: companion eigenvalues of %s", ErrRootLocation, h)
	}
	vals := eig.Values(nil)
	sort.SliceStable(vals, func(i, j int) bool { return absImag(vals[i]) > absImag(vals[j]) })
	zs := h.ComplexRootsNewton(vals[:n], 50)
	sort.SliceStable(zs, func(i, j int) bool {
		if real(zs[i]) != real(zs[j]) {
			return real(zs[i]) < real(zs[j])
		}
		return imag(zs[i]) < imag(zs[j])
	})
	return zs, nil
}

func absImag(z complex128) float64 {
	if imag(z) < 0 {
		return -imag(z)
	}
	return imag(z)
}
