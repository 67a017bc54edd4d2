// Package control provides the state-feedback laws that consume a
// synthesized gain.
//
// Controllers implement the [dynamo.Controller] interface:
//
//   - [LQR]: u = −K(x − target) for a gain computed at an equilibrium
//   - [None]: zero control, used when no equilibrium needs stabilizing
//
// # Usage
//
//	lqr, err := control.FromGain(bundle.Gain.K, dynamo.State{-1, 1})
//	u := lqr.Compute(x, 0)
package control
