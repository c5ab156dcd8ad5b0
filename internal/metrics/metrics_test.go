package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/dynamo"
)

func TestMagnitudeBound(t *testing.T) {
	m := NewMagnitudeBound(2.0)

	m.Observe(dynamo.State{1, 0, 0}, 0)
	m.Observe(dynamo.State{0, 1.2, 1.6}, 0.1)
	m.Observe(dynamo.State{0.1, 0, 0}, 0.2)

	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected max magnitude 1.0, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnvelopeAndRecovery(t *testing.T) {
	env := NewTransverseEnvelope(1.0)
	rec := NewLongitudinalRecovery(1.0)

	x := dynamo.State{0.3, 0.4, 0.6}
	env.Observe(x, 1)
	rec.Observe(x, 1)

	if math.Abs(env.Value()-0.5) > 1e-12 {
		t.Errorf("transverse = %f, want 0.5", env.Value())
	}
	if math.Abs(rec.Value()-0.6) > 1e-12 {
		t.Errorf("longitudinal = %f, want 0.6", rec.Value())
	}

	env.Observe(dynamo.State{1}, 2)
	if math.Abs(env.Value()-0.5) > 1e-12 {
		t.Error("short state should be ignored")
	}
}

func TestBounded(t *testing.T) {
	b := NewBounded(1.0)
	if b.Value() != 1.0 {
		t.Errorf("empty bounded = %f, want 1", b.Value())
	}

	b.Observe(dynamo.State{0.5, 0, 0}, 0)
	b.Observe(dynamo.State{2, 0, 0}, 0)
	if b.Value() != 0.5 {
		t.Errorf("bounded = %f, want 0.5", b.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default(1) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 metrics, got %d", len(seen))
	}
}
