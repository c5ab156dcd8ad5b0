package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// Clock reconciles variable frame deltas with a fixed physics step. Between
// calls to Advance the accumulator stays in [0, Dt).
type Clock struct {
	dt          float64
	maxTicks    int
	accumulator float64
	ticks       int64
	dropped     float64
}

// NewClock returns a clock stepping at dt seconds. maxTicks caps the ticks one
// frame may drain; zero means no cap.
func NewClock(dt float64, maxTicks int) (*Clock, error) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return nil, fmt.Errorf("dt must be positive, got %f: %w", dt, dynamo.ErrParameterBounds)
	}
	if maxTicks < 0 {
		return nil, fmt.Errorf("max ticks per frame must be non-negative, got %d: %w", maxTicks, dynamo.ErrParameterBounds)
	}
	return &Clock{dt: dt, maxTicks: maxTicks}, nil
}

// Advance adds a frame delta in seconds and returns how many whole ticks are
// due. Negative and non-finite deltas are ignored. When the cap is hit the
// surplus whole ticks are discarded and counted in Dropped.
func (c *Clock) Advance(delta float64) int {
	if !(delta > 0) || math.IsInf(delta, 1) {
		return 0
	}
	c.accumulator += delta

	n := 0
	for c.accumulator >= c.dt {
		if c.maxTicks > 0 && n == c.maxTicks {
			surplus := math.Floor(c.accumulator / c.dt)
			c.accumulator -= surplus * c.dt
			c.dropped += surplus * c.dt
			// rounding in Floor can leave the remainder a hair outside [0, dt)
			if c.accumulator >= c.dt {
				c.accumulator -= c.dt
				c.dropped += c.dt
			}
			if c.accumulator < 0 {
				c.accumulator = 0
			}
			break
		}
		c.accumulator -= c.dt
		n++
	}
	c.ticks += int64(n)
	return n
}

func (c *Clock) Reset() {
	c.accumulator = 0
	c.ticks = 0
	c.dropped = 0
}

func (c *Clock) Dt() float64          { return c.dt }
func (c *Clock) Accumulator() float64 { return c.accumulator }
func (c *Clock) Ticks() int64         { return c.ticks }

// Dropped is the wall time discarded by the per-frame cap since the last reset.
func (c *Clock) Dropped() float64 { return c.dropped }
