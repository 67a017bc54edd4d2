// Package integrators advances a dynamo.System by one fixed time step.
package integrators

import "github.com/san-kum/linstab/internal/dynamo"

// Integrator advances x by dt under a constant control u.
type Integrator interface {
	Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State
}

// axpy stores x + a*y into dst.
func axpy(dst, x dynamo.State, a float64, y dynamo.State) {
	for i := range x {
		dst[i] = x[i] + a*y[i]
	}
}

// ByName returns the integrator registered under name, or nil.
func ByName(name string) Integrator {
	switch name {
	case "euler":
		return NewEuler()
	case "rk4", "":
		return NewRK4()
	}
	return nil
}
