package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/san-kum/linstab/internal/integrators"
	"github.com/san-kum/linstab/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dynamics.X1Dot != model.ReferenceX1Dot {
		t.Errorf("expected reference x1_dot, got %s", cfg.Dynamics.X1Dot)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected %d workers, got %d", DefaultWorkers, cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	m, err := cfg.Model()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.String(), model.Reference().String(); got != want {
		t.Errorf("expected reference model\n%s\ngot\n%s", want, got)
	}
}

func TestWeights(t *testing.T) {
	w, err := DefaultConfig().Weights()
	if err != nil {
		t.Fatal(err)
	}
	if w.Q.At(0, 0) != 1 || w.Q.At(0, 1) != 0 || w.R.At(0, 0) != 1 {
		t.Error("expected identity weights")
	}

	cfg := DefaultConfig()
	cfg.LQR = LQRConfig{}
	w, err = cfg.Weights()
	if err != nil {
		t.Fatal(err)
	}
	if w.Q.At(1, 1) != 1 {
		t.Error("empty weights should fall back to identity")
	}
}

func TestWeightsInvalid(t *testing.T) {
	tests := []struct {
		name string
		lqr  LQRConfig
	}{
		{"ragged state weight", LQRConfig{StateWeight: [][]float64{{1, 0}, {0}}}},
		{"wrong state size", LQRConfig{StateWeight: [][]float64{{1}}}},
		{"wrong input size", LQRConfig{InputWeight: [][]float64{{1, 0}, {0, 1}}}},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.LQR = tt.lqr
		if _, err := cfg.Weights(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate should fail, got %v", tt.name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative workers, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Dynamics.X2Dot = ""
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing dynamics, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Dynamics.X1Dot = "k*x1 + x2"
	cfg.Dynamics.Params = map[string]Rational{"k": NewRational(-1, 3)}
	cfg.Workers = 4
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", loaded.Workers)
	}
	if len(loaded.Dynamics.Params) != 1 {
		t.Errorf("expected only the saved parameter, got %v", loaded.Dynamics.Params)
	}
	if got := loaded.Dynamics.Params["k"].String(); got != "-1/3" {
		t.Errorf("expected k=-1/3, got %s", got)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("workers: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Workers)
	}
	if len(cfg.Dynamics.Params) != 3 {
		t.Errorf("reference coefficients should be kept, got %v", cfg.Dynamics.Params)
	}
	if _, err := cfg.Model(); err != nil {
		t.Errorf("expected reference model to build: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"bad coefficient", "model:\n  params:\n    a: one\n"},
		{"non-scalar coefficient", "model:\n  params:\n    a: [1, 2]\n"},
		{"bad weights", "lqr:\n  input_weight: [[1, 2]]\n"},
		{"unknown integrator", "simulation:\n  integrator: leapfrog\n"},
		{"negative dt", "simulation:\n  dt: -0.1\n"},
	}

	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+".yaml")
		if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pitchfork")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Dynamics.Params["mu"].String() != "2" {
		t.Errorf("expected mu=2, got %s", cfg.Dynamics.Params["mu"])
	}

	cfg.Workers = 8
	if GetPreset("pitchfork").Workers == 8 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	if !sort.StringsAreSorted(presets) {
		t.Errorf("expected sorted names, got %v", presets)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
		if _, err := cfg.Model(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
		if _, err := cfg.Pipeline(nil); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestSimulator(t *testing.T) {
	cfg, radius, newIntegrator := DefaultConfig().Simulator()
	if cfg.Dt != 0.01 || cfg.Duration != 10 || radius != DefaultRadius {
		t.Errorf("unexpected defaults: %+v radius=%g", cfg, radius)
	}
	if _, ok := newIntegrator().(*integrators.RK4); !ok {
		t.Errorf("expected rk4, got %T", newIntegrator())
	}

	custom := DefaultConfig()
	custom.Simulation = SimulationConfig{Duration: 2, Integrator: "euler"}
	cfg, radius, newIntegrator = custom.Simulator()
	if cfg.Dt != 0.01 || cfg.Duration != 2 || radius != DefaultRadius {
		t.Errorf("zero fields should fall back to defaults: %+v radius=%g", cfg, radius)
	}
	if _, ok := newIntegrator().(*integrators.Euler); !ok {
		t.Errorf("expected euler, got %T", newIntegrator())
	}

	// presets leave the section empty
	if _, _, f := GetPreset("stable").Simulator(); f() == nil {
		t.Error("preset should get the default integrator")
	}
}
