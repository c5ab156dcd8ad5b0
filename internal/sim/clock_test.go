package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/dynamo"
)

func TestNewClockInvalid(t *testing.T) {
	tests := []struct {
		name     string
		dt       float64
		maxTicks int
	}{
		{"zero dt", 0, 0},
		{"negative dt", -0.01, 0},
		{"NaN dt", math.NaN(), 0},
		{"negative cap", 0.01, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClock(tt.dt, tt.maxTicks); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestClockAccumulatorStaysBelowDt(t *testing.T) {
	dt := 1.0 / 240
	c, err := NewClock(dt, 0)
	if err != nil {
		t.Fatal(err)
	}

	deltas := []float64{1.0 / 60, 1.0 / 144, 0.0331, 0.0001, 0.25, 1.0 / 30, 0.002}
	total := 0.0
	ticks := 0
	for round := 0; round < 50; round++ {
		for _, d := range deltas {
			ticks += c.Advance(d)
			total += d
			if acc := c.Accumulator(); acc < 0 || acc >= dt {
				t.Fatalf("accumulator %v outside [0, %v)", acc, dt)
			}
		}
	}

	expected := math.Floor(total / dt)
	if diff := math.Abs(float64(ticks) - expected); diff > 1 {
		t.Errorf("ticks = %d, expected %v ± 1", ticks, expected)
	}
	if c.Ticks() != int64(ticks) {
		t.Errorf("Ticks() = %d, want %d", c.Ticks(), ticks)
	}
}

func TestClockIgnoresBadDeltas(t *testing.T) {
	c, _ := NewClock(0.01, 0)
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if n := c.Advance(d); n != 0 {
			t.Errorf("Advance(%v) = %d ticks, want 0", d, n)
		}
	}
	if c.Accumulator() != 0 {
		t.Errorf("accumulator moved to %v", c.Accumulator())
	}
}

func TestClockCapDropsSurplus(t *testing.T) {
	dt := 0.01
	c, _ := NewClock(dt, 5)

	n := c.Advance(0.1055)
	if n != 5 {
		t.Fatalf("expected capped 5 ticks, got %d", n)
	}
	if acc := c.Accumulator(); acc < 0 || acc >= dt {
		t.Errorf("accumulator %v outside [0, %v)", acc, dt)
	}
	if d := c.Dropped(); math.Abs(d-0.05) > 1e-9 {
		t.Errorf("dropped = %v, want 0.05", d)
	}

	c.Reset()
	if c.Accumulator() != 0 || c.Ticks() != 0 || c.Dropped() != 0 {
		t.Error("Reset did not zero the clock")
	}
}
