package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/akostiuk/zoewatch/core/metrics"
	"github.com/akostiuk/zoewatch/core/watch"
	"github.com/akostiuk/zoewatch/infra/email"
	"github.com/akostiuk/zoewatch/infra/fetch"
	"github.com/akostiuk/zoewatch/infra/mqtt"
	"github.com/akostiuk/zoewatch/infra/telegram"
)

// StorageConfig locates the SQLite database file.
type StorageConfig struct {
	Path string `json:"path"`
}

func (c *StorageConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "zoewatch.db"
	}
}

type Config struct {
	Source   fetch.Config    `json:"source"`
	Watch    watch.Config    `json:"watch"`
	Storage  StorageConfig   `json:"storage"`
	Telegram telegram.Config `json:"telegram"`
	Email    email.Config    `json:"email"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Metrics  metrics.Config  `json:"metrics"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("ZW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "zw_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Source.SetDefaults()
	c.Watch.SetDefaults()
	c.Storage.SetDefaults()
	c.Telegram.SetDefaults()
	c.Email.SetDefaults()
	c.MQTT.SetDefaults()
	c.Metrics.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
