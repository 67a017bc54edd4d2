// Package dynamo provides the numeric primitives shared by the model and its
// feedback controllers.
//
// The analysis itself is exact; these types are the floating point side used
// once a gain has been computed:
//
//   - [State]: vector representing system state
//   - [Control]: vector of control inputs
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Controller]: feedback controller interface
//
// # Example
//
//	m := model.Reference()
//	lqr := control.NewLQR(k, dynamo.State{-1, 1})
//	xdot := m.Derive(x, lqr.Compute(x, 0), 0)
package dynamo
