package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines polling parameters loaded from configuration.
type Config struct {
	// IntervalMinutes is the fixed delay between fetch cycles. The first
	// cycle runs immediately at start.
	IntervalMinutes int `json:"interval_minutes" yaml:"interval_minutes"`
	// SendTimeoutSeconds bounds each per-recipient delivery.
	SendTimeoutSeconds int `json:"send_timeout_seconds" yaml:"send_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 30
	}
	if c.SendTimeoutSeconds <= 0 {
		c.SendTimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.IntervalMinutes <= 0 {
		return fmt.Errorf("interval_minutes must be positive")
	}
	return nil
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
