package metrics

import "fmt"

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.InfluxEnabled {
		if c.InfluxURL == "" {
			return fmt.Errorf("influx_url is required when influx is enabled")
		}
		if c.InfluxOrg == "" || c.InfluxBucket == "" {
			return fmt.Errorf("influx_org and influx_bucket are required when influx is enabled")
		}
	}
	return nil
}
