package email

import "fmt"

// Config holds SMTP settings for the admin digest mail.
type Config struct {
	Enabled    bool   `json:"enabled"`
	SMTPServer string `json:"smtp_server"`
	SMTPPort   int    `json:"smtp_port"`
	SMTPUser   string `json:"smtp_user"`
	SMTPPass   string `json:"smtp_pass"`
	FromEmail  string `json:"from_email"`
	ToEmail    string `json:"to_email"`
}

func (c *Config) SetDefaults() {
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SMTPServer == "" {
		return fmt.Errorf("email: smtp_server is required")
	}
	if c.FromEmail == "" || c.ToEmail == "" {
		return fmt.Errorf("email: from_email and to_email are required")
	}
	return nil
}
