package integrators

import "github.com/san-kum/blochsim/internal/dynamo"

// Euler is the explicit first-order stepper. It spirals outward on the
// precessing Bloch system and is kept to show that drift.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x.Add(sys.Derive(x, t).Scale(dt))
}
