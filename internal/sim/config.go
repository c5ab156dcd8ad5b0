package sim

import (
	"fmt"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/trace"
)

type Config struct {
	Dt               float64
	Duration         float64
	MaxTicksPerFrame int
	Capacity         int
	LayoutX          trace.Layout
	LayoutY          trace.Layout
	ValidateState    bool
}

func DefaultConfig() Config {
	lx, ly := trace.DefaultLayouts()
	return Config{
		Dt:               1.0 / 240,
		Duration:         3.0,
		MaxTicksPerFrame: 0,
		Capacity:         trace.DefaultCapacity,
		LayoutX:          lx,
		LayoutY:          ly,
		ValidateState:    true,
	}
}

func (c Config) validate(needDuration bool) error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if needDuration && c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, dynamo.ErrParameterBounds)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("trace capacity must be positive, got %d: %w", c.Capacity, trace.ErrCapacity)
	}
	return nil
}

func (c Config) layouts() (trace.Layout, trace.Layout) {
	dx, dy := trace.DefaultLayouts()
	lx, ly := c.LayoutX, c.LayoutY
	if lx == (trace.Layout{}) {
		lx = dx
	}
	if ly == (trace.Layout{}) {
		ly = dy
	}
	return lx, ly
}
