package poly

// A polynomial in a main variable y with coefficients in Q[x] is written as
// []Poly, index k holding the coefficient of y^k. The zero polynomial is the
// empty slice.

// Det computes the determinant of a square matrix over Q[x] with the
// fraction-free Bareiss elimination; every division is exact.
func Det(m [][]Poly) Poly {
	n := len(m)
	if n == 0 {
		return FromInts(1)
	}
	a := make([][]Poly, n)
	for i := range m {
		a[i] = append([]Poly(nil), m[i]...)
	}
	neg := false
	prev := FromInts(1)
	for k := 0; k < n-1; k++ {
		if a[k][k].IsZero() {
			swap := -1
			for i := k + 1; i < n; i++ {
				if !a[i][k].IsZero() {
					swap = i
					break
				}
			}
			if swap < 0 {
				return Poly{}
			}
			a[k], a[swap] = a[swap], a[k]
			neg = !neg
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				num := a[i][j].Mul(a[k][k]).Sub(a[i][k].Mul(a[k][j]))
				a[i][j] = num.Quo(prev)
			}
		}
		prev = a[k][k]
	}
	d := a[n-1][n-1]
	if neg {
		d = d.Neg()
	}
	return d
}

// Subresultant returns the j-th subresultant of f and g with respect to the
// main variable, as coefficients of y^0 .. y^j. Both f and g must be nonzero
// and j must not exceed min(deg f, deg g).
func Subresultant(f, g []Poly, j int) []Poly {
	m, n := len(f)-1, len(g)-1
	size := m + n - 2*j
	width := m + n - j
	row := func(c []Poly, deg, shift int) []Poly {
		out := make([]Poly, width)
		for col := range out {
			e := width - 1 - col - shift
			if e >= 0 && e <= deg {
				out[col] = c[e]
			}
		}
		return out
	}
	var rows [][]Poly
	for k := n - j - 1; k >= 0; k-- {
		rows = append(rows, row(f, m, k))
	}
	for k := m - j - 1; k >= 0; k-- {
		rows = append(rows, row(g, n, k))
	}
	out := make([]Poly, j+1)
	for i := 0; i <= j; i++ {
		mat := make([][]Poly, size)
		for r := range mat {
			mat[r] = make([]Poly, size)
			copy(mat[r], rows[r][:size-1])
			mat[r][size-1] = rows[r][width-1-i]
		}
		out[i] = Det(mat)
	}
	return out
}

// Resultant returns Res_y(f, g), a polynomial in x that vanishes wherever f
// and g share a root in y or both leading coefficients vanish.
func Resultant(f, g []Poly) Poly {
	return Subresultant(f, g, 0)[0]
}
