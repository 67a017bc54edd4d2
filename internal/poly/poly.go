package poly

import (
	"math/big"
	"math/cmplx"
	"sort"
	"strings"
)

// Poly is a univariate polynomial with exact rational coefficients, stored
// lowest degree first. Poly values are never mutated; every operation
// allocates a new result.
type Poly struct {
	c []*big.Rat
}

func New(coeffs ...*big.Rat) Poly {
	c := make([]*big.Rat, len(coeffs))
	for i, v := range coeffs {
		c[i] = new(big.Rat)
		if v != nil {
			c[i].Set(v)
		}
	}
	return Poly{c: trim(c)}
}

func FromInts(coeffs ...int64) Poly {
	c := make([]*big.Rat, len(coeffs))
	for i, v := range coeffs {
		c[i] = big.NewRat(v, 1)
	}
	return Poly{c: trim(c)}
}

// X returns the polynomial x.
func X() Poly { return FromInts(0, 1) }

func Const(r *big.Rat) Poly { return New(r) }

func trim(c []*big.Rat) []*big.Rat {
	n := len(c)
	for n > 0 && c[n-1].Sign() == 0 {
		n--
	}
	return c[:n]
}

// Degree returns -1 for the zero polynomial.
func (p Poly) Degree() int { return len(p.c) - 1 }

func (p Poly) IsZero() bool { return len(p.c) == 0 }

func (p Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.c) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.c[i])
}

func (p Poly) Lead() *big.Rat { return p.Coeff(p.Degree()) }

func (p Poly) Coeffs() []*big.Rat {
	out := make([]*big.Rat, len(p.c))
	for i, v := range p.c {
		out[i] = new(big.Rat).Set(v)
	}
	return out
}

func (p Poly) at(i int) *big.Rat {
	if i < len(p.c) {
		return p.c[i]
	}
	return new(big.Rat)
}

func (p Poly) Add(q Poly) Poly {
	n := max(len(p.c), len(q.c))
	c := make([]*big.Rat, n)
	for i := range c {
		c[i] = new(big.Rat).Add(p.at(i), q.at(i))
	}
	return Poly{c: trim(c)}
}

func (p Poly) Sub(q Poly) Poly {
	n := max(len(p.c), len(q.c))
	c := make([]*big.Rat, n)
	for i := range c {
		c[i] = new(big.Rat).Sub(p.at(i), q.at(i))
	}
	return Poly{c: trim(c)}
}

func (p Poly) Neg() Poly {
	c := make([]*big.Rat, len(p.c))
	for i, v := range p.c {
		c[i] = new(big.Rat).Neg(v)
	}
	return Poly{c: c}
}

func (p Poly) Scale(r *big.Rat) Poly {
	if r.Sign() == 0 {
		return Poly{}
	}
	c := make([]*big.Rat, len(p.c))
	for i, v := range p.c {
		c[i] = new(big.Rat).Mul(v, r)
	}
	return Poly{c: c}
}

func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Poly{}
	}
	c := make([]*big.Rat, len(p.c)+len(q.c)-1)
	for i := range c {
		c[i] = new(big.Rat)
	}
	tmp := new(big.Rat)
	for i, a := range p.c {
		for j, b := range q.c {
			c[i+j].Add(c[i+j], tmp.Mul(a, b))
		}
	}
	return Poly{c: trim(c)}
}

// DivMod returns quotient and remainder of p by d. It panics if d is zero.
func (p Poly) DivMod(d Poly) (Poly, Poly) {
	if d.IsZero() {
		panic("poly: division by zero polynomial")
	}
	dd := d.Degree()
	if p.Degree() < dd {
		return Poly{}, p
	}
	rem := p.Coeffs()
	quo := make([]*big.Rat, p.Degree()-dd+1)
	for i := range quo {
		quo[i] = new(big.Rat)
	}
	lead := d.c[dd]
	tmp := new(big.Rat)
	for i := len(rem) - 1; i >= dd; i-- {
		if rem[i].Sign() == 0 {
			continue
		}
		coef := new(big.Rat).Quo(rem[i], lead)
		quo[i-dd] = coef
		for j := 0; j <= dd; j++ {
			rem[i-dd+j].Sub(rem[i-dd+j], tmp.Mul(coef, d.c[j]))
		}
	}
	return Poly{c: trim(quo)}, Poly{c: trim(rem[:dd])}
}

func (p Poly) Quo(d Poly) Poly {
	q, _ := p.DivMod(d)
	return q
}

func (p Poly) Rem(d Poly) Poly {
	_, r := p.DivMod(d)
	return r
}

// Monic scales p to a leading coefficient of one. The zero polynomial is
// returned unchanged.
func (p Poly) Monic() Poly {
	if p.IsZero() {
		return p
	}
	return p.Scale(new(big.Rat).Inv(p.Lead()))
}

func (p Poly) Equal(q Poly) bool {
	if len(p.c) != len(q.c) {
		return false
	}
	for i := range p.c {
		if p.c[i].Cmp(q.c[i]) != 0 {
			return false
		}
	}
	return true
}

func (p Poly) Derivative() Poly {
	if len(p.c) <= 1 {
		return Poly{}
	}
	c := make([]*big.Rat, len(p.c)-1)
	for i := 1; i < len(p.c); i++ {
		c[i-1] = new(big.Rat).Mul(p.c[i], big.NewRat(int64(i), 1))
	}
	return Poly{c: trim(c)}
}

// Eval evaluates p at a rational point using Horner's rule.
func (p Poly) Eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p.c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p.c[i])
	}
	return acc
}

func (p Poly) EvalComplex(z complex128) complex128 {
	var acc complex128
	for i := len(p.c) - 1; i >= 0; i-- {
		f, _ := p.c[i].Float64()
		acc = acc*z + complex(f, 0)
	}
	return acc
}

// GCD returns the monic greatest common divisor. GCD(0, 0) is 0.
func GCD(a, b Poly) Poly {
	for !b.IsZero() {
		a, b = b, a.Rem(b)
	}
	return a.Monic()
}

// ExtGCD returns g = GCD(a, b) together with s and t such that s*a + t*b = g.
func ExtGCD(a, b Poly) (g, s, t Poly) {
	r0, r1 := a, b
	s0, s1 := FromInts(1), Poly{}
	t0, t1 := Poly{}, FromInts(1)
	for !r1.IsZero() {
		q, r := r0.DivMod(r1)
		r0, r1 = r1, r
		s0, s1 = s1, s0.Sub(q.Mul(s1))
		t0, t1 = t1, t0.Sub(q.Mul(t1))
	}
	if r0.IsZero() {
		return Poly{}, Poly{}, Poly{}
	}
	inv := new(big.Rat).Inv(r0.Lead())
	return r0.Scale(inv), s0.Scale(inv), t0.Scale(inv)
}

// SquareFree returns the monic squarefree part of p.
func (p Poly) SquareFree() Poly {
	if p.Degree() <= 0 {
		return p.Monic()
	}
	return p.Quo(GCD(p, p.Derivative())).Monic()
}

// Primitive returns the integer coefficients of p scaled so that they are
// coprime and the leading coefficient is positive.
func (p Poly) Primitive() []*big.Int {
	if p.IsZero() {
		return nil
	}
	lcm := big.NewInt(1)
	g := new(big.Int)
	for _, v := range p.c {
		d := v.Denom()
		g.GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p.c))
	content := new(big.Int)
	for i, v := range p.c {
		n := new(big.Int).Mul(v.Num(), new(big.Int).Quo(lcm, v.Denom()))
		out[i] = n
		content.GCD(nil, nil, content, new(big.Int).Abs(n))
	}
	if p.Lead().Sign() < 0 {
		content.Neg(content)
	}
	for _, n := range out {
		n.Quo(n, content)
	}
	return out
}

// maxDivisorBits bounds trial division in RationalRoots.
const maxDivisorBits = 40

// RationalRoots returns the distinct rational roots of p in ascending order.
// Candidates come from the rational root theorem; when the constant or
// leading coefficient is too large to enumerate its divisors, only the root
// at zero is reported.
func (p Poly) RationalRoots() []*big.Rat {
	if p.Degree() <= 0 {
		return nil
	}
	var roots []*big.Rat
	q := p
	if q.c[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		for q.c[0].Sign() == 0 {
			q = Poly{c: q.c[1:]}
		}
	}
	if q.Degree() >= 1 {
		ints := q.Primitive()
		num, okN := divisors(ints[0])
		den, okD := divisors(ints[len(ints)-1])
		if okN && okD {
			seen := make(map[string]bool)
			for _, a := range num {
				for _, b := range den {
					for _, sgn := range []int64{1, -1} {
						cand := new(big.Rat).SetFrac(new(big.Int).Mul(a, big.NewInt(sgn)), b)
						key := cand.RatString()
						if seen[key] {
							continue
						}
						seen[key] = true
						if q.Eval(cand).Sign() == 0 {
							roots = append(roots, cand)
						}
					}
				}
			}
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots
}

func divisors(n *big.Int) ([]*big.Int, bool) {
	a := new(big.Int).Abs(n)
	if a.Sign() == 0 || a.BitLen() > maxDivisorBits {
		return nil, false
	}
	v := a.Uint64()
	var out []*big.Int
	for d := uint64(1); d*d <= v; d++ {
		if v%d != 0 {
			continue
		}
		out = append(out, new(big.Int).SetUint64(d))
		if d*d != v {
			out = append(out, new(big.Int).SetUint64(v/d))
		}
	}
	return out, true
}

// DeflateRoots divides out (x - r) for every given root of p.
func (p Poly) DeflateRoots(roots []*big.Rat) Poly {
	q := p
	for _, r := range roots {
		q = q.Quo(New(new(big.Rat).Neg(r), big.NewRat(1, 1)))
	}
	return q
}

// ComplexRootsNewton polishes approximate roots of p with Newton's method.
func (p Poly) ComplexRootsNewton(seeds []complex128, iters int) []complex128 {
	dp := p.Derivative()
	out := make([]complex128, len(seeds))
	for i, z := range seeds {
		for k := 0; k < iters; k++ {
			d := dp.EvalComplex(z)
			if d == 0 {
				break
			}
			step := p.EvalComplex(z) / d
			z -= step
			if cmplx.Abs(step) <= 1e-16*max(1, cmplx.Abs(z)) {
				break
			}
		}
		out[i] = z
	}
	return out
}

func (p Poly) String() string { return p.Format("x") }

// Format renders p with the given variable name, highest degree first.
func (p Poly) Format(v string) string {
	if p.IsZero() {
		return "0"
	}
	var terms []termText
	for i := len(p.c) - 1; i >= 0; i-- {
		if p.c[i].Sign() == 0 {
			continue
		}
		mono := ""
		switch {
		case i == 1:
			mono = v
		case i > 1:
			mono = v + "^" + itoa(i)
		}
		terms = append(terms, termText{coeff: p.c[i], mono: mono})
	}
	return joinTerms(terms)
}

type termText struct {
	coeff *big.Rat
	mono  string
}

func joinTerms(terms []termText) string {
	if len(terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range terms {
		neg := t.coeff.Sign() < 0
		abs := new(big.Rat).Abs(t.coeff)
		switch {
		case i == 0 && neg:
			b.WriteString("-")
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		switch {
		case t.mono == "":
			b.WriteString(abs.RatString())
		case abs.Cmp(big.NewRat(1, 1)) == 0:
			b.WriteString(t.mono)
		default:
			b.WriteString(abs.RatString())
			b.WriteString("*")
			b.WriteString(t.mono)
		}
	}
	return b.String()
}

func itoa(i int) string { return big.NewInt(int64(i)).String() }
