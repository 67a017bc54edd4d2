package algebra

import (
	"math/big"
	"strings"
)

// maxSquareFactor bounds trial division when pulling square factors out of
// a radicand.
const maxSquareFactor = 1 << 20

// surd is a simplified square root coef*sqrt(rad) with rad a squarefree
// integer; rad < 0 denotes an imaginary root.
type surd struct {
	coef *big.Rat
	rad  *big.Int
}

// sqrtRat writes sqrt(q) for rational q as coef*sqrt(rad).
func sqrtRat(q *big.Rat) surd {
	// sqrt(n/d) = sqrt(n*d)/d
	k := new(big.Int).Mul(q.Num(), q.Denom())
	sign := k.Sign()
	k.Abs(k)
	out, rest := big.NewInt(1), new(big.Int).Set(k)
	sq, r := new(big.Int), new(big.Int)
	for f := int64(2); f < maxSquareFactor; f++ {
		ff := big.NewInt(f * f)
		if ff.Cmp(rest) > 0 {
			break
		}
		for {
			sq.QuoRem(rest, ff, r)
			if r.Sign() != 0 {
				break
			}
			rest.Set(sq)
			out.Mul(out, big.NewInt(f))
		}
	}
	if sign < 0 {
		rest.Neg(rest)
	}
	coef := new(big.Rat).SetFrac(out, q.Denom())
	return surd{coef: coef, rad: rest}
}

func (s surd) radical() string {
	abs := new(big.Int).Abs(s.rad)
	base := ""
	if abs.Cmp(big.NewInt(1)) != 0 {
		base = "sqrt(" + abs.String() + ")"
	}
	if s.rad.Sign() < 0 {
		if base == "" {
			return "I"
		}
		return base + "*I"
	}
	return base
}

// formatSurd renders u + v*coef*sqrt(rad).
func formatSurd(u, v *big.Rat, s surd) string {
	c := new(big.Rat).Mul(v, s.coef)
	if c.Sign() == 0 || s.rad.Sign() == 0 {
		return u.RatString()
	}
	if s.rad.Cmp(big.NewInt(1)) == 0 {
		return new(big.Rat).Add(u, c).RatString()
	}
	rad := s.radical()
	abs := new(big.Rat).Abs(c)
	var term strings.Builder
	if abs.Num().Cmp(big.NewInt(1)) != 0 {
		term.WriteString(abs.Num().String())
		term.WriteString("*")
	}
	term.WriteString(rad)
	if !abs.IsInt() {
		term.WriteString("/")
		term.WriteString(abs.Denom().String())
	}
	switch {
	case u.Sign() == 0 && c.Sign() < 0:
		return "-" + term.String()
	case u.Sign() == 0:
		return term.String()
	case c.Sign() < 0:
		return u.RatString() + " - " + term.String()
	default:
		return u.RatString() + " + " + term.String()
	}
}

// formatElement prints rationals directly, elements of quadratic fields in
// radical form, and everything else as a polynomial in CRootOf(h, k).
func formatElement(e Element) string {
	if r, ok := e.Rational(); ok {
		return r.RatString()
	}
	if e.f.Degree() == 2 {
		u, v, s, ok := quadraticForm(e)
		if ok {
			return formatSurd(u, v, s)
		}
	}
	return e.p.Format(rootString(e.f))
}

// quadraticForm rewrites a0 + a1*α, α a root of t^2 + b*t + c, as
// u + v*sqrt(D) with D = b^2/4 - c.
func quadraticForm(e Element) (u, v *big.Rat, s surd, ok bool) {
	b := e.f.min.Coeff(1)
	c := e.f.min.Coeff(0)
	halfB := new(big.Rat).Mul(b, big.NewRat(1, 2))
	d := new(big.Rat).Mul(halfB, halfB)
	d.Sub(d, c)
	// α = -b/2 + sigma*sqrt(D); sigma is the sign of α + b/2.
	sigma := 1
	if e.f.real {
		shifted := e.f.Gen().Add(e.f.FromRat(halfB))
		sg, err := shifted.Sign()
		if err != nil {
			return nil, nil, surd{}, false
		}
		sigma = sg
	} else if imag(e.f.approx) < 0 {
		sigma = -1
	}
	a0, a1 := e.p.Coeff(0), e.p.Coeff(1)
	u = new(big.Rat).Sub(a0, new(big.Rat).Mul(a1, halfB))
	v = new(big.Rat).Mul(a1, big.NewRat(int64(sigma), 1))
	return u, v, sqrtRat(d), true
}
