package poly

import "math/big"

// SturmChain returns the Sturm sequence of p: p, p', and the negated
// remainders of successive divisions.
func SturmChain(p Poly) []Poly {
	chain := []Poly{p, p.Derivative()}
	for {
		n := len(chain)
		if chain[n-1].IsZero() {
			return chain[:n-1]
		}
		r := chain[n-2].Rem(chain[n-1]).Neg()
		if r.IsZero() {
			return chain
		}
		chain = append(chain, r)
	}
}

func signChanges(chain []Poly, x *big.Rat) int {
	changes, last := 0, 0
	for _, q := range chain {
		s := q.Eval(x).Sign()
		if s == 0 {
			continue
		}
		if last != 0 && s != last {
			changes++
		}
		last = s
	}
	return changes
}

// CountRealRoots returns the number of distinct real roots of p in (lo, hi].
func CountRealRoots(p Poly, lo, hi *big.Rat) int {
	if p.Degree() <= 0 {
		return 0
	}
	chain := SturmChain(p)
	return signChanges(chain, lo) - signChanges(chain, hi)
}

// CauchyBound returns a bound B with |r| < B for every complex root r of p.
func CauchyBound(p Poly) *big.Rat {
	b := new(big.Rat)
	lead := p.Lead()
	for i := 0; i < p.Degree(); i++ {
		q := new(big.Rat).Quo(p.c[i], lead)
		q.Abs(q)
		if q.Cmp(b) > 0 {
			b = q
		}
	}
	return b.Add(b, big.NewRat(1, 1))
}

// Interval is a half-open rational interval (Lo, Hi] holding exactly one
// real root of a squarefree polynomial. Lo == Hi marks an exact root.
type Interval struct {
	Lo, Hi *big.Rat
}

func (iv Interval) Exact() bool { return iv.Lo.Cmp(iv.Hi) == 0 }

func (iv Interval) Width() *big.Rat { return new(big.Rat).Sub(iv.Hi, iv.Lo) }

// RealRootIntervals isolates the real roots of the squarefree polynomial p in
// ascending order. Interval endpoints are never roots.
func RealRootIntervals(p Poly) []Interval {
	if p.Degree() <= 0 {
		return nil
	}
	chain := SturmChain(p)
	b := CauchyBound(p)
	var out []Interval
	var isolate func(lo, hi *big.Rat, vlo, vhi int)
	isolate = func(lo, hi *big.Rat, vlo, vhi int) {
		n := vlo - vhi
		if n <= 0 {
			return
		}
		if n == 1 {
			out = append(out, Interval{Lo: lo, Hi: hi})
			return
		}
		mid := splitPoint(p, lo, hi)
		vmid := signChanges(chain, mid)
		isolate(lo, mid, vlo, vmid)
		isolate(mid, hi, vmid, vhi)
	}
	lo := new(big.Rat).Neg(b)
	isolate(lo, b, signChanges(chain, lo), signChanges(chain, b))
	return out
}

// splitPoint returns a point strictly inside (lo, hi) where p does not vanish.
func splitPoint(p Poly, lo, hi *big.Rat) *big.Rat {
	width := new(big.Rat).Sub(hi, lo)
	for den := int64(2); ; den++ {
		for num := int64(1); num < den; num++ {
			x := new(big.Rat).Mul(width, big.NewRat(num, den))
			x.Add(x, lo)
			if p.Eval(x).Sign() != 0 {
				return x
			}
		}
	}
}

// Refine bisects iv until it is narrower than width. p must be squarefree
// with exactly one root in iv.
func Refine(p Poly, iv Interval, width *big.Rat) Interval {
	if iv.Exact() {
		return iv
	}
	lo := new(big.Rat).Set(iv.Lo)
	hi := new(big.Rat).Set(iv.Hi)
	sLo := p.Eval(lo).Sign()
	half := big.NewRat(1, 2)
	for new(big.Rat).Sub(hi, lo).Cmp(width) > 0 {
		mid := new(big.Rat).Add(lo, hi)
		mid.Mul(mid, half)
		s := p.Eval(mid).Sign()
		switch {
		case s == 0:
			return Interval{Lo: mid, Hi: new(big.Rat).Set(mid)}
		case s == sLo:
			lo = mid
		default:
			hi = mid
		}
	}
	return Interval{Lo: lo, Hi: hi}
}

// Bisect halves iv once, keeping the half that holds the root of p.
func Bisect(p Poly, iv Interval) Interval {
	if iv.Exact() {
		return iv
	}
	mid := new(big.Rat).Add(iv.Lo, iv.Hi)
	mid.Mul(mid, big.NewRat(1, 2))
	s := p.Eval(mid).Sign()
	switch {
	case s == 0:
		return Interval{Lo: mid, Hi: new(big.Rat).Set(mid)}
	case s == p.Eval(iv.Lo).Sign():
		return Interval{Lo: mid, Hi: new(big.Rat).Set(iv.Hi)}
	default:
		return Interval{Lo: new(big.Rat).Set(iv.Lo), Hi: mid}
	}
}

// EvalInterval returns a rational interval enclosing p(x) for all x in iv.
func EvalInterval(p Poly, iv Interval) (lo, hi *big.Rat) {
	lo, hi = new(big.Rat), new(big.Rat)
	for i := len(p.c) - 1; i >= 0; i-- {
		lo, hi = mulInterval(lo, hi, iv.Lo, iv.Hi)
		lo.Add(lo, p.c[i])
		hi.Add(hi, p.c[i])
	}
	return lo, hi
}

func mulInterval(a, b, c, d *big.Rat) (*big.Rat, *big.Rat) {
	ps := [4]*big.Rat{
		new(big.Rat).Mul(a, c),
		new(big.Rat).Mul(a, d),
		new(big.Rat).Mul(b, c),
		new(big.Rat).Mul(b, d),
	}
	lo, hi := ps[0], ps[0]
	for _, v := range ps[1:] {
		if v.Cmp(lo) < 0 {
			lo = v
		}
		if v.Cmp(hi) > 0 {
			hi = v
		}
	}
	return new(big.Rat).Set(lo), new(big.Rat).Set(hi)
}
