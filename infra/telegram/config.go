package telegram

import "fmt"

// Config defines the Telegram bot connection.
type Config struct {
	Token string `json:"token"`
	// Enabled turns the transport on. A disabled transport makes the service
	// parse and persist without notifying anyone.
	Enabled bool `json:"enabled"`
	// PollTimeoutSeconds is the long-poll timeout for the update loop.
	PollTimeoutSeconds int `json:"poll_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PollTimeoutSeconds <= 0 {
		c.PollTimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Token == "" {
		return fmt.Errorf("token is required when telegram is enabled")
	}
	return nil
}
