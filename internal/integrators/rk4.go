package integrators

import "github.com/san-kum/linstab/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. It keeps its stage
// buffers between calls, so a single RK4 must not be shared across
// goroutines.
type RK4 struct {
	k2, k3  dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))
	half := dt * 0.5

	k1 := sys.Derive(x, u, t)

	axpy(r.scratch, x, half, k1)
	copy(r.k2, sys.Derive(r.scratch, u, t+half))

	axpy(r.scratch, x, half, r.k2)
	copy(r.k3, sys.Derive(r.scratch, u, t+half))

	axpy(r.scratch, x, dt, r.k3)
	k4 := sys.Derive(r.scratch, u, t+dt)

	result := make(dynamo.State, len(x))
	dt6 := dt / 6.0
	for i := range x {
		result[i] = x[i] + dt6*(k1[i]+2*r.k2[i]+2*r.k3[i]+k4[i])
	}
	return result
}
