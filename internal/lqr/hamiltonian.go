package lqr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Hamiltonian solves the CARE from the eigenvectors of the Hamiltonian
// matrix belonging to its stable eigenvalues.
type Hamiltonian struct{}

var _ Solver = Hamiltonian{}

// SolveCARE returns the symmetric stabilizing solution P.
func (Hamiltonian) SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error) {
	chol, err := validate(a, b, q, r)
	if err != nil {
		return nil, err
	}
	n, _ := a.Dims()

	// S = B R⁻¹ Bᵀ
	var rbt, s mat.Dense
	if err := chol.SolveTo(&rbt, b.T()); err != nil {
		return nil, fmt.Errorf("%w: R^-1 B^T: %v", ErrNumeric, err)
	}
	s.Mul(b, &rbt)

	h := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.Set(i, j, a.At(i, j))
			h.Set(i, n+j, -s.At(i, j))
			h.Set(n+i, j, -q.At(i, j))
			h.Set(n+i, n+j, -a.At(j, i))
		}
	}

	var eig mat.Eigen
	if !eig.Factorize(h, mat.EigenRight) {
		return nil, fmt.Errorf("%w: hamiltonian eigen-decomposition", ErrNumeric)
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	scale := math.Max(1, mat.Norm(h, math.Inf(1)))
	u := mat.NewDense(2*n, n, nil)
	col := 0
	for k, v := range vals {
		if math.Abs(real(v)) <= axisTol*scale {
			return nil, fmt.Errorf("%w: hamiltonian eigenvalue %v on the imaginary axis", ErrUncontrollable, v)
		}
		if real(v) > 0 || imag(v) < 0 {
			continue
		}
		if col+1 > n || (imag(v) > 0 && col+2 > n) {
			return nil, fmt.Errorf("%w: stable subspace dimension exceeds %d", ErrNumeric, n)
		}
		for i := 0; i < 2*n; i++ {
			z := vecs.At(i, k)
			u.Set(i, col, real(z))
			if imag(v) > 0 {
				u.Set(i, col+1, imag(z))
			}
		}
		col++
		if imag(v) > 0 {
			col++
		}
	}
	if col != n {
		return nil, fmt.Errorf("%w: stable subspace has dimension %d, want %d", ErrUncontrollable, col, n)
	}

	u1 := u.Slice(0, n, 0, n)
	u2 := u.Slice(n, 2*n, 0, n)
	if c := mat.Cond(u1, 2); math.IsInf(c, 1) || math.IsNaN(c) || c > condLimit {
		return nil, fmt.Errorf("%w: stable subspace basis is singular (cond %g)", ErrUncontrollable, c)
	}

	// P = U2 U1⁻¹, solved as U1ᵀ Pᵀ = U2ᵀ.
	var pt mat.Dense
	if err := pt.Solve(u1.T(), u2.T()); err != nil {
		return nil, fmt.Errorf("%w: solving for P: %v", ErrNumeric, err)
	}
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p.Set(i, j, (pt.At(j, i)+pt.At(i, j))/2)
		}
	}
	if !finite(p) {
		return nil, fmt.Errorf("%w: P has non-finite entries", ErrNumeric)
	}
	return p, nil
}

func finite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
