package config

import "sort"

func preset(name string, mutate func(*Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	mutate(c)
	return c
}

// Presets are the variants the visualizer has shipped with over time.
var Presets = map[string]*Config{
	"fid": preset("fid", func(c *Config) {}),
	"fid-cw": preset("fid-cw", func(c *Config) {
		c.Physics.Handedness = "cw"
	}),
	"held": preset("held", func(c *Config) {
		c.Physics.THold = 0.5
		c.Duration = 5.0
	}),
	"slow": preset("slow", func(c *Config) {
		c.Physics.T1 = 3.0
		c.Physics.T2 = 1.2
		c.Duration = 8.0
	}),
	"fast-precession": preset("fast-precession", func(c *Config) {
		c.Physics.FrequencyHz = 60
		c.Dt = 1.0 / 480
	}),
	"short-t1": preset("short-t1", func(c *Config) {
		c.Physics.T1 = 0.6
		c.Physics.T2 = 0.3
		c.Duration = 2.0
	}),
}

// GetPreset returns a copy of the named preset or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
