package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/sim"
	"github.com/san-kum/blochsim/internal/trace"
)

const (
	DefaultM0            = 1.0
	DefaultT1            = 1.8
	DefaultT2            = 0.35
	DefaultFrequency     = 30.0
	DefaultPulseDuration = 0.015
	DefaultDt            = 1.0 / 240
	DefaultDuration      = 3.0
	DefaultMaxTicks      = 0
	DefaultTheme         = "scope"
)

type Config struct {
	Name             string        `yaml:"name"`
	Physics          PhysicsConfig `yaml:"physics"`
	Dt               float64       `yaml:"dt"`
	Duration         float64       `yaml:"duration"`
	MaxTicksPerFrame int           `yaml:"max_ticks_per_frame"`
	Trace            TraceConfig   `yaml:"trace"`
	Theme            string        `yaml:"theme"`
}

type PhysicsConfig struct {
	M0            float64 `yaml:"m0"`
	T1            float64 `yaml:"t1"`
	T2            float64 `yaml:"t2"`
	FrequencyHz   float64 `yaml:"frequency_hz"`
	Phi0          float64 `yaml:"phi0"`
	THold         float64 `yaml:"t_hold"`
	Handedness    string  `yaml:"handedness"`
	PulseDuration float64 `yaml:"pulse_duration"`
}

type TraceConfig struct {
	Capacity int     `yaml:"capacity"`
	Step     float64 `yaml:"step"`
	Scale    float64 `yaml:"scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "fid",
		Physics: PhysicsConfig{
			M0:            DefaultM0,
			T1:            DefaultT1,
			T2:            DefaultT2,
			FrequencyHz:   DefaultFrequency,
			Handedness:    "ccw",
			PulseDuration: DefaultPulseDuration,
		},
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		MaxTicksPerFrame: DefaultMaxTicks,
		Trace: TraceConfig{
			Capacity: trace.DefaultCapacity,
			Step:     trace.DefaultStep,
			Scale:    trace.DefaultScale,
		},
		Theme: DefaultTheme,
	}
}

// Load reads a yaml file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	p, err := c.BlochParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Trace.Capacity <= 0 {
		return fmt.Errorf("trace capacity must be positive, got %d: %w", c.Trace.Capacity, trace.ErrCapacity)
	}
	return nil
}

func (c *Config) BlochParams() (bloch.Params, error) {
	h, err := bloch.ParseHandedness(c.Physics.Handedness)
	if err != nil {
		return bloch.Params{}, err
	}
	return bloch.Params{
		M0:            c.Physics.M0,
		T1:            c.Physics.T1,
		T2:            c.Physics.T2,
		Omega0:        2 * math.Pi * c.Physics.FrequencyHz,
		Phi0:          c.Physics.Phi0,
		THold:         c.Physics.THold,
		Handedness:    h,
		PulseDuration: c.Physics.PulseDuration,
	}, nil
}

func (c *Config) SimConfig() sim.Config {
	sc := sim.DefaultConfig()
	sc.Dt = c.Dt
	sc.Duration = c.Duration
	sc.MaxTicksPerFrame = c.MaxTicksPerFrame
	sc.Capacity = c.Trace.Capacity
	if c.Trace.Step > 0 {
		sc.LayoutX.Step, sc.LayoutY.Step = c.Trace.Step, c.Trace.Step
	}
	if c.Trace.Scale > 0 {
		sc.LayoutX.Scale, sc.LayoutY.Scale = c.Trace.Scale, c.Trace.Scale
	}
	return sc
}

// ParamNames lists the keys SetParam accepts.
var ParamNames = []string{"m0", "t1", "t2", "frequency_hz", "phi0", "t_hold", "dt", "duration"}

// SetParam sets a numeric value by its yaml key. "freq" and "hold" are
// accepted as short forms.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "m0":
		c.Physics.M0 = v
	case "t1":
		c.Physics.T1 = v
	case "t2":
		c.Physics.T2 = v
	case "frequency_hz", "freq":
		c.Physics.FrequencyHz = v
	case "phi0":
		c.Physics.Phi0 = v
	case "t_hold", "hold":
		c.Physics.THold = v
	case "dt":
		c.Dt = v
	case "duration":
		c.Duration = v
	default:
		return fmt.Errorf("unknown parameter %q (available: %v)", name, ParamNames)
	}
	return nil
}

// Clone returns a deep copy; presets are shared and must not be mutated.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
