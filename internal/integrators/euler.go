package integrators

import "github.com/san-kum/linstab/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	result := make(dynamo.State, len(x))
	axpy(result, x, dt, sys.Derive(x, u, t))
	return result
}
