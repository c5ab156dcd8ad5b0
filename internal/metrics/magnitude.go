package metrics

import (
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// MagnitudeBound tracks the largest |M|/M0 seen. The closed form keeps it at
// or below 1.
type MagnitudeBound struct {
	m0  float64
	max float64
}

func NewMagnitudeBound(m0 float64) *MagnitudeBound {
	return &MagnitudeBound{m0: m0}
}

func (m *MagnitudeBound) Name() string { return "max_magnitude" }

func (m *MagnitudeBound) Observe(x dynamo.State, t float64) {
	if m.m0 == 0 {
		return
	}
	m.max = math.Max(m.max, x.Norm()/m.m0)
}

func (m *MagnitudeBound) Value() float64 { return m.max }
func (m *MagnitudeBound) Reset()         { m.max = 0 }

// TransverseEnvelope reports the last |Mxy|/M0.
type TransverseEnvelope struct {
	m0   float64
	last float64
}

func NewTransverseEnvelope(m0 float64) *TransverseEnvelope {
	return &TransverseEnvelope{m0: m0}
}

func (e *TransverseEnvelope) Name() string { return "transverse" }

func (e *TransverseEnvelope) Observe(x dynamo.State, t float64) {
	if len(x) < 2 || e.m0 == 0 {
		return
	}
	e.last = math.Hypot(x[0], x[1]) / e.m0
}

func (e *TransverseEnvelope) Value() float64 { return e.last }
func (e *TransverseEnvelope) Reset()         { e.last = 0 }

// LongitudinalRecovery reports the last Mz/M0.
type LongitudinalRecovery struct {
	m0   float64
	last float64
}

func NewLongitudinalRecovery(m0 float64) *LongitudinalRecovery {
	return &LongitudinalRecovery{m0: m0}
}

func (l *LongitudinalRecovery) Name() string { return "longitudinal" }

func (l *LongitudinalRecovery) Observe(x dynamo.State, t float64) {
	if len(x) < 3 || l.m0 == 0 {
		return
	}
	l.last = x[2] / l.m0
}

func (l *LongitudinalRecovery) Value() float64 { return l.last }
func (l *LongitudinalRecovery) Reset()         { l.last = 0 }
