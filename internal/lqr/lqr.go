package lqr

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUncontrollable indicates the pair (A, B) is not stabilizable.
	ErrUncontrollable = errors.New("lqr: system is not stabilizable")

	// ErrInvalidWeights indicates unusable cost weights.
	ErrInvalidWeights = errors.New("lqr: invalid weights")

	// ErrNumeric indicates a factorization failure.
	ErrNumeric = errors.New("lqr: numeric failure")
)

const (
	// axisTol is the relative distance from the imaginary axis below which a
	// Hamiltonian eigenvalue is treated as lying on it.
	axisTol = 1e-9

	// condLimit bounds the condition number of the subspace basis U1.
	condLimit = 1e12

	// symTol is the relative asymmetry tolerated in Q, R and P.
	symTol = 1e-9
)

// Weights are the state and input cost matrices.
type Weights struct {
	Q *mat.Dense
	R *mat.Dense
}

// DefaultWeights returns Q = I(n), R = I(m).
func DefaultWeights(n, m int) Weights {
	return Weights{Q: identity(n), R: identity(m)}
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// Solver returns the stabilizing solution P of the CARE.
type Solver interface {
	SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error)
}

// Synthesize returns the 1xn (in general mxn) gain K for (A, B) under w using
// the Hamiltonian solver.
func Synthesize(a, b mat.Matrix, w Weights) (*mat.Dense, error) {
	return SynthesizeWith(Hamiltonian{}, a, b, w)
}

// SynthesizeWith computes K = R⁻¹BᵀP with P from s and verifies that the
// closed loop A − BK is Hurwitz.
func SynthesizeWith(s Solver, a, b mat.Matrix, w Weights) (*mat.Dense, error) {
	if w.Q == nil || w.R == nil {
		return nil, fmt.Errorf("%w: missing Q or R", ErrInvalidWeights)
	}
	chol, err := validate(a, b, w.Q, w.R)
	if err != nil {
		return nil, err
	}
	p, err := s.SolveCARE(a, b, w.Q, w.R)
	if err != nil {
		return nil, err
	}

	var btp, k mat.Dense
	btp.Mul(b.T(), p)
	if err := chol.SolveTo(&k, &btp); err != nil {
		return nil, fmt.Errorf("%w: R^-1 B^T P: %v", ErrNumeric, err)
	}

	var bk, acl mat.Dense
	bk.Mul(b, &k)
	acl.Sub(a, &bk)
	stable, err := hurwitz(&acl)
	if err != nil {
		return nil, err
	}
	if !stable {
		return nil, fmt.Errorf("%w: closed loop not Hurwitz", ErrUncontrollable)
	}
	return &k, nil
}

// validate checks shapes and definiteness and returns the Cholesky factor
// of R.
func validate(a, b, q, r mat.Matrix) (*mat.Cholesky, error) {
	n, nc := a.Dims()
	if n != nc || n == 0 {
		return nil, fmt.Errorf("%w: A is %dx%d", ErrInvalidWeights, n, nc)
	}
	bn, m := b.Dims()
	if bn != n || m == 0 {
		return nil, fmt.Errorf("%w: B is %dx%d, want %dxm", ErrInvalidWeights, bn, m, n)
	}
	if qr, qc := q.Dims(); qr != n || qc != n {
		return nil, fmt.Errorf("%w: Q is %dx%d, want %dx%d", ErrInvalidWeights, qr, qc, n, n)
	}
	if rr, rc := r.Dims(); rr != m || rc != m {
		return nil, fmt.Errorf("%w: R is %dx%d, want %dx%d", ErrInvalidWeights, rr, rc, m, m)
	}

	qs, ok := symmetric(q)
	if !ok {
		return nil, fmt.Errorf("%w: Q is not symmetric", ErrInvalidWeights)
	}
	var es mat.EigenSym
	if !es.Factorize(qs, false) {
		return nil, fmt.Errorf("%w: eigenvalues of Q", ErrNumeric)
	}
	scale := math.Max(1, mat.Norm(q, math.Inf(1)))
	for _, v := range es.Values(nil) {
		if v < -symTol*scale {
			return nil, fmt.Errorf("%w: Q is not positive semidefinite", ErrInvalidWeights)
		}
	}

	rs, ok := symmetric(r)
	if !ok {
		return nil, fmt.Errorf("%w: R is not symmetric", ErrInvalidWeights)
	}
	var chol mat.Cholesky
	if !chol.Factorize(rs) {
		return nil, fmt.Errorf("%w: R is not positive definite", ErrInvalidWeights)
	}
	return &chol, nil
}

// symmetric returns (m + mᵀ)/2 when m is symmetric within tolerance.
func symmetric(m mat.Matrix) (*mat.SymDense, bool) {
	n, _ := m.Dims()
	scale := math.Max(1, mat.Norm(m, math.Inf(1)))
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := m.At(i, j), m.At(j, i)
			if math.Abs(x-y) > symTol*scale {
				return nil, false
			}
			s.SetSym(i, j, (x+y)/2)
		}
	}
	return s, true
}

// hurwitz reports whether every eigenvalue of a has negative real part.
func hurwitz(a mat.Matrix) (bool, error) {
	var eig mat.Eigen
	if !eig.Factorize(a, mat.EigenNone) {
		return false, fmt.Errorf("%w: closed-loop eigenvalues", ErrNumeric)
	}
	for _, v := range eig.Values(nil) {
		if real(v) >= 0 {
			return false, nil
		}
	}
	return true, nil
}
