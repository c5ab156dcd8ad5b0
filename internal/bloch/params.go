package bloch

import (
	"fmt"
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// Handedness fixes the sense of precession in the transverse plane.
type Handedness int

const (
	CounterClockwise Handedness = 1
	Clockwise        Handedness = -1
)

func (h Handedness) String() string {
	if h == Clockwise {
		return "cw"
	}
	return "ccw"
}

// ParseHandedness accepts "ccw", "cw", "+1" or "-1".
func ParseHandedness(s string) (Handedness, error) {
	switch s {
	case "ccw", "+1", "1", "":
		return CounterClockwise, nil
	case "cw", "-1":
		return Clockwise, nil
	}
	return 0, fmt.Errorf("unknown handedness %q: %w", s, dynamo.ErrParameterBounds)
}

// Params configures a single relaxation/precession model. Times are seconds,
// Omega0 is rad/s.
type Params struct {
	M0         float64
	T1         float64
	T2         float64
	Omega0     float64
	Phi0       float64
	THold      float64
	Handedness Handedness
	// PulseDuration is informational; the pulse is applied instantaneously.
	PulseDuration float64
}

func DefaultParams() Params {
	return Params{
		M0:            1.0,
		T1:            1.8,
		T2:            0.35,
		Omega0:        2 * math.Pi * 30,
		Phi0:          0,
		Handedness:    CounterClockwise,
		PulseDuration: 0.015,
	}
}

// Validate reports parameters the closed form cannot honor. T2 > 2·T1 is
// unphysical and would let |M| exceed M0.
func (p Params) Validate() error {
	finite := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v: %w", name, v, dynamo.ErrParameterBounds)
		}
		return nil
	}
	fields := []struct {
		name string
		v    float64
	}{{"m0", p.M0}, {"t1", p.T1}, {"t2", p.T2}, {"omega0", p.Omega0}, {"phi0", p.Phi0}, {"t_hold", p.THold}}
	for _, f := range fields {
		if err := finite(f.name, f.v); err != nil {
			return err
		}
	}
	if p.M0 <= 0 {
		return fmt.Errorf("m0 must be positive, got %f: %w", p.M0, dynamo.ErrParameterBounds)
	}
	if p.T1 <= 0 {
		return fmt.Errorf("t1 must be positive, got %f: %w", p.T1, dynamo.ErrParameterBounds)
	}
	if p.T2 <= 0 {
		return fmt.Errorf("t2 must be positive, got %f: %w", p.T2, dynamo.ErrParameterBounds)
	}
	if p.T2 > 2*p.T1 {
		return fmt.Errorf("t2 (%f) must not exceed 2*t1 (%f): %w", p.T2, 2*p.T1, dynamo.ErrParameterBounds)
	}
	if p.THold < 0 {
		return fmt.Errorf("t_hold must be non-negative, got %f: %w", p.THold, dynamo.ErrParameterBounds)
	}
	if p.Handedness != CounterClockwise && p.Handedness != Clockwise {
		return fmt.Errorf("handedness must be +1 or -1, got %d: %w", p.Handedness, dynamo.ErrParameterBounds)
	}
	return nil
}

// Frequency returns the precession frequency in Hz.
func (p Params) Frequency() float64 {
	return p.Omega0 / (2 * math.Pi)
}
