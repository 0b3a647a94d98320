package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.PollIntervalMs != def.PollIntervalMs || cfg.Interpolation != def.Interpolation {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoadFrom_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	partial := `{
  "pollIntervalMs": 250,
  "interpolation": "rgb",
  "actuators": [{"id": "desk"}]
}`
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollIntervalMs != 250 || cfg.Interpolation != "rgb" {
		t.Errorf("explicit values lost: %+v", cfg)
	}
	if len(cfg.Actuators) != 1 || cfg.Actuators[0].ID != "desk" {
		t.Errorf("actuators = %+v", cfg.Actuators)
	}
	if cfg.DriftThresholdMs != 100 || cfg.GradientLow == "" || cfg.Source.Mode != SourceDemo {
		t.Errorf("omitted fields not backfilled: %+v", cfg)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid JSON did not error")
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := &Config{PollIntervalMs: 1500, DriftThresholdMs: 80, CommandDelayMs: 25}
	if cfg.PollInterval() != 1500*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval())
	}
	if cfg.DriftThreshold() != 80*time.Millisecond {
		t.Errorf("DriftThreshold = %v", cfg.DriftThreshold())
	}
	if cfg.CommandDelay() != 25*time.Millisecond {
		t.Errorf("CommandDelay = %v", cfg.CommandDelay())
	}
}
