package bloch

import "github.com/san-kum/blochsim/internal/dynamo"

// Equations is the Bloch model in the laboratory frame as an ODE. The state
// is (Mx, My, Mz), t is time since the pulse.
type Equations struct {
	Params Params
}

func NewEquations(p Params) *Equations {
	return &Equations{Params: p}
}

func (e *Equations) StateDim() int { return 3 }

func (e *Equations) Derive(x dynamo.State, t float64) dynamo.State {
	if len(x) < 3 {
		return make(dynamo.State, 3)
	}
	p := e.Params
	h := float64(p.Handedness)
	mx, my, mz := x[0], x[1], x[2]

	dz := 0.0
	if t >= p.THold {
		dz = (p.M0 - mz) / p.T1
	}
	return dynamo.State{
		-mx/p.T2 - h*p.Omega0*my,
		-my/p.T2 + h*p.Omega0*mx,
		dz,
	}
}
