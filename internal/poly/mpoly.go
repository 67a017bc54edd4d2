package poly

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// MaxVars is the largest number of variables a Ring supports.
const MaxVars = 4

// Monomial holds the exponent of each ring variable.
type Monomial [MaxVars]int

func (m Monomial) Degree() int {
	d := 0
	for _, e := range m {
		d += e
	}
	return d
}

// Ring names the variables of a family of multivariate polynomials.
// Polynomials from different rings cannot be combined.
type Ring struct {
	names []string
}

func NewRing(names ...string) *Ring {
	if len(names) > MaxVars {
		panic(fmt.Sprintf("poly: ring supports at most %d variables", MaxVars))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			panic("poly: duplicate variable " + n)
		}
		seen[n] = true
	}
	return &Ring{names: append([]string(nil), names...)}
}

func (r *Ring) NumVars() int { return len(r.names) }

func (r *Ring) Names() []string { return append([]string(nil), r.names...) }

func (r *Ring) Name(i int) string { return r.names[i] }

func (r *Ring) Index(name string) (int, bool) {
	for i, n := range r.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (r *Ring) Zero() MPoly { return MPoly{ring: r, terms: map[Monomial]*big.Rat{}} }

func (r *Ring) Const(c *big.Rat) MPoly {
	p := r.Zero()
	if c.Sign() != 0 {
		p.terms[Monomial{}] = new(big.Rat).Set(c)
	}
	return p
}

func (r *Ring) Int(n int64) MPoly { return r.Const(big.NewRat(n, 1)) }

func (r *Ring) Var(i int) MPoly {
	if i < 0 || i >= len(r.names) {
		panic("poly: variable index out of range")
	}
	var m Monomial
	m[i] = 1
	p := r.Zero()
	p.terms[m] = big.NewRat(1, 1)
	return p
}

// MPoly is a multivariate polynomial with rational coefficients. Like Poly,
// MPoly values are immutable.
type MPoly struct {
	ring  *Ring
	terms map[Monomial]*big.Rat
}

// Term is one monomial of an MPoly with its coefficient.
type Term struct {
	Mono  Monomial
	Coeff *big.Rat
}

func (p MPoly) Ring() *Ring { return p.ring }

func (p MPoly) check(q MPoly) {
	if p.ring != q.ring {
		panic("poly: mixing polynomials from different rings")
	}
}

func (p MPoly) IsZero() bool { return len(p.terms) == 0 }

// Constant reports the value of p when p has no variables.
func (p MPoly) Constant() (*big.Rat, bool) {
	switch len(p.terms) {
	case 0:
		return new(big.Rat), true
	case 1:
		if c, ok := p.terms[Monomial{}]; ok {
			return new(big.Rat).Set(c), true
		}
	}
	return nil, false
}

func (p MPoly) Coeff(m Monomial) *big.Rat {
	if c, ok := p.terms[m]; ok {
		return new(big.Rat).Set(c)
	}
	return new(big.Rat)
}

// Terms returns the terms in graded order: total degree descending, then by
// exponent of each variable in ring order.
func (p MPoly) Terms() []Term {
	out := make([]Term, 0, len(p.terms))
	for m, c := range p.terms {
		out = append(out, Term{Mono: m, Coeff: new(big.Rat).Set(c)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Mono, out[j].Mono
		if da, db := a.Degree(), b.Degree(); da != db {
			return da > db
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] > b[k]
			}
		}
		return false
	})
	return out
}

func (p MPoly) clone() MPoly {
	q := p.ring.Zero()
	for m, c := range p.terms {
		q.terms[m] = new(big.Rat).Set(c)
	}
	return q
}

func (p MPoly) addTerm(m Monomial, c *big.Rat) {
	if c.Sign() == 0 {
		return
	}
	if cur, ok := p.terms[m]; ok {
		cur.Add(cur, c)
		if cur.Sign() == 0 {
			delete(p.terms, m)
		}
		return
	}
	p.terms[m] = new(big.Rat).Set(c)
}

func (p MPoly) Add(q MPoly) MPoly {
	p.check(q)
	out := p.clone()
	for m, c := range q.terms {
		out.addTerm(m, c)
	}
	return out
}

func (p MPoly) Sub(q MPoly) MPoly { return p.Add(q.Neg()) }

func (p MPoly) Neg() MPoly { return p.Scale(big.NewRat(-1, 1)) }

func (p MPoly) Scale(r *big.Rat) MPoly {
	out := p.ring.Zero()
	if r.Sign() == 0 {
		return out
	}
	for m, c := range p.terms {
		out.terms[m] = new(big.Rat).Mul(c, r)
	}
	return out
}

func (p MPoly) Mul(q MPoly) MPoly {
	p.check(q)
	out := p.ring.Zero()
	tmp := new(big.Rat)
	for ma, ca := range p.terms {
		for mb, cb := range q.terms {
			var m Monomial
			for k := range m {
				m[k] = ma[k] + mb[k]
			}
			out.addTerm(m, tmp.Mul(ca, cb))
		}
	}
	return out
}

func (p MPoly) Pow(n int) MPoly {
	if n < 0 {
		panic("poly: negative exponent")
	}
	out := p.ring.Int(1)
	base := p
	for n > 0 {
		if n&1 == 1 {
			out = out.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return out
}

// Diff returns the partial derivative of p with respect to variable i.
func (p MPoly) Diff(i int) MPoly {
	out := p.ring.Zero()
	for m, c := range p.terms {
		if m[i] == 0 {
			continue
		}
		d := m
		d[i]--
		out.addTerm(d, new(big.Rat).Mul(c, big.NewRat(int64(m[i]), 1)))
	}
	return out
}

// Substitute replaces variable i by the rational value v.
func (p MPoly) Substitute(i int, v *big.Rat) MPoly {
	out := p.ring.Zero()
	for m, c := range p.terms {
		k := m[i]
		m[i] = 0
		coef := new(big.Rat).Set(c)
		for ; k > 0; k-- {
			coef.Mul(coef, v)
		}
		out.addTerm(m, coef)
	}
	return out
}

// Degree returns the largest exponent of variable i, or -1 for zero.
func (p MPoly) Degree(i int) int {
	d := -1
	for m := range p.terms {
		d = max(d, m[i])
	}
	return d
}

// Uses reports whether variable i occurs in p.
func (p MPoly) Uses(i int) bool { return p.Degree(i) > 0 }

// CoefficientsIn splits p by powers of variable i: p = sum_k out[k] * v_i^k.
// The zero polynomial yields an empty slice.
func (p MPoly) CoefficientsIn(i int) []MPoly {
	out := make([]MPoly, p.Degree(i)+1)
	for k := range out {
		out[k] = p.ring.Zero()
	}
	for m, c := range p.terms {
		k := m[i]
		m[i] = 0
		out[k].addTerm(m, c)
	}
	return out
}

// Univariate converts p to a Poly in variable i. It fails if any other
// variable occurs in p.
func (p MPoly) Univariate(i int) (Poly, bool) {
	c := make([]*big.Rat, p.Degree(i)+1)
	for k := range c {
		c[k] = new(big.Rat)
	}
	for m, v := range p.terms {
		k := m[i]
		m[i] = 0
		if m != (Monomial{}) {
			return Poly{}, false
		}
		c[k].Set(v)
	}
	return Poly{c: trim(c)}, true
}

// Eval evaluates p at a rational point with one value per ring variable.
func (p MPoly) Eval(vals []*big.Rat) *big.Rat {
	sum := new(big.Rat)
	for m, c := range p.terms {
		t := new(big.Rat).Set(c)
		for k := 0; k < len(p.ring.names); k++ {
			for e := m[k]; e > 0; e-- {
				t.Mul(t, vals[k])
			}
		}
		sum.Add(sum, t)
	}
	return sum
}

// EvalFloat evaluates p at a floating point value per ring variable.
func (p MPoly) EvalFloat(vals []float64) float64 {
	sum := 0.0
	for m, c := range p.terms {
		t, _ := c.Float64()
		for k := 0; k < len(p.ring.names); k++ {
			for e := m[k]; e > 0; e-- {
				t *= vals[k]
			}
		}
		sum += t
	}
	return sum
}

func (p MPoly) Equal(q MPoly) bool {
	if p.ring != q.ring || len(p.terms) != len(q.terms) {
		return false
	}
	for m, c := range p.terms {
		d, ok := q.terms[m]
		if !ok || c.Cmp(d) != 0 {
			return false
		}
	}
	return true
}

func (p MPoly) String() string {
	terms := p.Terms()
	out := make([]termText, len(terms))
	for i, t := range terms {
		out[i] = termText{coeff: t.Coeff, mono: p.monoString(t.Mono)}
	}
	return joinTerms(out)
}

func (p MPoly) monoString(m Monomial) string {
	var parts []string
	for k, name := range p.ring.names {
		switch {
		case m[k] == 1:
			parts = append(parts, name)
		case m[k] > 1:
			parts = append(parts, name+"^"+itoa(m[k]))
		}
	}
	return strings.Join(parts, "*")
}
