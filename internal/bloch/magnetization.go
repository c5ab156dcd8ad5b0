package bloch

import (
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// Magnetization is the bulk magnetization vector (Mx, My, Mz).
type Magnetization struct {
	X, Y, Z float64
}

func (m Magnetization) Norm() float64 {
	return math.Sqrt(m.X*m.X + m.Y*m.Y + m.Z*m.Z)
}

// Transverse returns |Mxy|.
func (m Magnetization) Transverse() float64 {
	return math.Hypot(m.X, m.Y)
}

// Phase returns the transverse phase angle in (-π, π].
func (m Magnetization) Phase() float64 {
	return math.Atan2(m.Y, m.X)
}

func (m Magnetization) State() dynamo.State {
	return dynamo.State{m.X, m.Y, m.Z}
}

func FromState(s dynamo.State) Magnetization {
	var m Magnetization
	if len(s) > 0 {
		m.X = s[0]
	}
	if len(s) > 1 {
		m.Y = s[1]
	}
	if len(s) > 2 {
		m.Z = s[2]
	}
	return m
}

// Signal holds the two quadrature detector readings.
type Signal struct {
	Sx, Sy float64
}

// Detect projects the magnetization onto detectors along X and Y. No display
// scaling is applied here.
func Detect(m Magnetization) Signal {
	return Signal{Sx: m.X, Sy: m.Y}
}
