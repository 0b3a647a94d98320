package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SourceMode selects where playback ground truth comes from.
type SourceMode string

const (
	// SourceHTTP polls a Spotify-shaped HTTP API with a bearer token.
	SourceHTTP SourceMode = "http"
	// SourceDemo runs the built-in scripted source; no network needed.
	SourceDemo SourceMode = "demo"
)

// ActuatorConfig declares one light in the rig.
type ActuatorConfig struct {
	ID   string `json:"id"`
	Kind string `json:"kind,omitempty"` // "log" is the only built-in kind
}

// MIDIConfig configures the optional beat/bar MIDI bridge.
type MIDIConfig struct {
	Enabled  bool   `json:"enabled,omitempty"`
	PortName string `json:"portName,omitempty"`
	Channel  uint8  `json:"channel,omitempty"`
	BeatNote uint8  `json:"beatNote,omitempty"`
	BarNote  uint8  `json:"barNote,omitempty"`
}

// SourceConfig configures the playback source client.
type SourceConfig struct {
	Mode        SourceMode `json:"mode,omitempty"`
	BaseURL     string     `json:"baseUrl,omitempty"`
	AccessToken string     `json:"accessToken,omitempty"`
}

// Config is the main configuration structure.
type Config struct {
	PollIntervalMs   int    `json:"pollIntervalMs,omitempty"`
	DriftThresholdMs int    `json:"driftThresholdMs,omitempty"`
	CommandDelayMs   int    `json:"commandDelayMs,omitempty"`
	Interpolation    string `json:"interpolation,omitempty"` // hcl | hcl-long | rgb
	GradientLow      string `json:"gradientLow,omitempty"`   // hex color for low pitch energy
	GradientHigh     string `json:"gradientHigh,omitempty"`  // hex color for high pitch energy

	Actuators []ActuatorConfig `json:"actuators,omitempty"`
	MIDI      MIDIConfig       `json:"midi,omitempty"`
	Source    SourceConfig     `json:"source,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMs:   1000,
		DriftThresholdMs: 100,
		CommandDelayMs:   50,
		Interpolation:    "hcl",
		GradientLow:      "#1a0533",
		GradientHigh:     "#ff9e00",
		Actuators: []ActuatorConfig{
			{ID: "left", Kind: "log"},
			{ID: "right", Kind: "log"},
		},
		MIDI: MIDIConfig{
			Channel:  9,
			BeatNote: 37,
			BarNote:  36,
		},
		Source: SourceConfig{Mode: SourceDemo},
	}
}

// PollInterval returns the poll period as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// DriftThreshold returns the drift threshold as a Duration.
func (c *Config) DriftThreshold() time.Duration {
	return time.Duration(c.DriftThresholdMs) * time.Millisecond
}

// CommandDelay returns the per-step actuator delay as a Duration.
func (c *Config) CommandDelay() time.Duration {
	return time.Duration(c.CommandDelayMs) * time.Millisecond
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lightbeat"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields left at zero fall back to their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = def.PollIntervalMs
	}
	if c.DriftThresholdMs <= 0 {
		c.DriftThresholdMs = def.DriftThresholdMs
	}
	if c.CommandDelayMs <= 0 {
		c.CommandDelayMs = def.CommandDelayMs
	}
	if c.Interpolation == "" {
		c.Interpolation = def.Interpolation
	}
	if c.GradientLow == "" {
		c.GradientLow = def.GradientLow
	}
	if c.GradientHigh == "" {
		c.GradientHigh = def.GradientHigh
	}
	if len(c.Actuators) == 0 {
		c.Actuators = def.Actuators
	}
	if c.Source.Mode == "" {
		c.Source.Mode = def.Source.Mode
	}
}
