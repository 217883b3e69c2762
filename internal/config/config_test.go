package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simcore.toml")
	raw := `
[simulation]
tick_rate = 60
seed = 42
frame_interval = "10ms"

[world]
creatures = 3

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.TickRate != 60 || cfg.Simulation.Seed != 42 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Simulation.FrameInterval != 10*time.Millisecond {
		t.Errorf("frame_interval = %s, want 10ms", cfg.Simulation.FrameInterval)
	}
	// Untouched keys keep their defaults.
	if cfg.Simulation.MaxTicksPerAdvance != 30 || cfg.Journal.FlushIntervalTicks != 150 {
		t.Errorf("defaults lost: cap=%d flush=%d", cfg.Simulation.MaxTicksPerAdvance, cfg.Journal.FlushIntervalTicks)
	}
	if cfg.World.Width != 1000 || cfg.World.Creatures != 3 {
		t.Errorf("world = %+v", cfg.World)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format = %q", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"zero tick rate", "[simulation]\ntick_rate = 0", "tick_rate"},
		{"negative cap", "[simulation]\nmax_ticks_per_advance = -1", "max_ticks_per_advance"},
		{"zero area", "[world]\nwidth = 0", "world size"},
		{"db without dsn", "[database]\nenabled = true\ndsn = \"\"", "dsn"},
		{"bad format", "[logging]\nformat = \"xml\"", "logging.format"},
		{"bad toml", "[simulation\ntick_rate = 1", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw), "test")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}
	t.Setenv(EnvPath, "/etc/sim.toml")
	if got := Path(); got != "/etc/sim.toml" {
		t.Errorf("Path() = %q", got)
	}
}
