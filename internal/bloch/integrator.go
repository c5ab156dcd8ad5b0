package bloch

import (
	"math"
)

// Integrator advances the magnetization through the closed-form FID. It is
// not safe for concurrent use.
type Integrator struct {
	params Params
	state  Magnetization
	t      float64
	pulsed bool
}

// NewIntegrator returns an integrator at equilibrium (0, 0, M0). Call
// ApplyPulse to start the decay.
func NewIntegrator(p Params) (*Integrator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{
		params: p,
		state:  Magnetization{Z: p.M0},
	}, nil
}

// ApplyPulse tips the full equilibrium magnetization onto +X and resets the
// elapsed time.
func (in *Integrator) ApplyPulse() {
	in.state = Magnetization{X: in.params.M0}
	in.t = 0
	in.pulsed = true
}

// Step advances elapsed time by dt and returns the new state. A dt that is
// not a positive finite number leaves the integrator untouched.
func (in *Integrator) Step(dt float64) Magnetization {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return in.state
	}
	in.t += dt
	if in.pulsed {
		in.state = in.At(in.t)
	}
	return in.state
}

// At evaluates the decay at time t after the pulse without touching the
// integrator's own clock.
func (in *Integrator) At(t float64) Magnetization {
	p := in.params
	if t <= 0 {
		return Magnetization{X: p.M0 * math.Cos(p.Phi0), Y: float64(p.Handedness) * p.M0 * math.Sin(p.Phi0)}
	}
	e2 := math.Exp(-t / p.T2)
	sin, cos := math.Sincos(p.Omega0*t + p.Phi0)

	mz := 0.0
	if t > p.THold {
		mz = p.M0 * (1 - math.Exp(-(t-p.THold)/p.T1))
	}

	return Magnetization{
		X: p.M0 * e2 * cos,
		Y: float64(p.Handedness) * p.M0 * e2 * sin,
		Z: mz,
	}
}

func (in *Integrator) State() Magnetization { return in.state }
func (in *Integrator) Elapsed() float64     { return in.t }
func (in *Integrator) Params() Params       { return in.params }
func (in *Integrator) Pulsed() bool         { return in.pulsed }
