// Package lqr computes infinite-horizon LQR state-feedback gains.
//
// The continuous algebraic Riccati equation
//
//	AᵀP + PA − PBR⁻¹BᵀP + Q = 0
//
// is solved through the stable invariant subspace of the Hamiltonian matrix
//
//	H = [ A   −BR⁻¹Bᵀ ]
//	    [ −Q  −Aᵀ     ]
//
// and the gain is K = R⁻¹BᵀP, so that u = −Kx makes A − BK Hurwitz.
//
// Failures are reported with distinct sentinels:
//
//   - [ErrInvalidWeights]: R not symmetric positive definite, Q not
//     symmetric positive semidefinite, or mismatched shapes
//   - [ErrUncontrollable]: no stabilizing solution exists
//   - [ErrNumeric]: a factorization failed
package lqr
