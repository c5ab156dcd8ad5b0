package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	p, err := cfg.BlochParams()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Omega0-2*math.Pi*30) > 1e-9 {
		t.Errorf("omega0 = %f", p.Omega0)
	}
	if p.Handedness != bloch.CounterClockwise {
		t.Errorf("default handedness = %v", p.Handedness)
	}
	if sc := cfg.SimConfig(); sc.MaxTicksPerFrame != 0 {
		t.Errorf("default tick cap = %d, want uncapped", sc.MaxTicksPerFrame)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("physics:\n  t2: 0.5\n  handedness: cw\ntrace:\n  capacity: 400\nmax_ticks_per_frame: 8\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Physics.T2 != 0.5 || cfg.Physics.T1 != DefaultT1 {
		t.Errorf("unexpected relaxation times %+v", cfg.Physics)
	}
	if cfg.Trace.Capacity != 400 || cfg.Trace.Scale != 120 {
		t.Errorf("unexpected trace config %+v", cfg.Trace)
	}

	sc := cfg.SimConfig()
	if sc.Capacity != 400 || sc.LayoutX.Scale != 120 || sc.MaxTicksPerFrame != 8 {
		t.Errorf("sim config not derived: %+v", sc)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  t1: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("held")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n%+v\n%+v", loaded, cfg)
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != 6 {
		t.Fatalf("expected 6 presets, got %v", names)
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("fid")
	a.Physics.T2 = 99
	if GetPreset("fid").Physics.T2 == 99 {
		t.Error("GetPreset leaked shared preset")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for _, tc := range []struct {
		name string
		v    float64
		get  func() float64
	}{
		{"t1", 2.5, func() float64 { return cfg.Physics.T1 }},
		{"freq", 42, func() float64 { return cfg.Physics.FrequencyHz }},
		{"hold", 0.3, func() float64 { return cfg.Physics.THold }},
		{"duration", 7, func() float64 { return cfg.Duration }},
	} {
		if err := cfg.SetParam(tc.name, tc.v); err != nil {
			t.Fatalf("SetParam(%s): %v", tc.name, err)
		}
		if tc.get() != tc.v {
			t.Errorf("%s = %v, want %v", tc.name, tc.get(), tc.v)
		}
	}
	if err := cfg.SetParam("gain", 1); err == nil {
		t.Errorf("unknown parameter accepted")
	}
}
