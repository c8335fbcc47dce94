package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config contains configuration for the gateway client.
type Config struct {
	// BaseURL is the chatbot platform base URL
	// Example: http://localhost:8000
	BaseURL string

	// Timeout is the HTTP request timeout
	// Default: 30 seconds
	Timeout time.Duration

	// UserAgent is sent on every request
	// Default: chatbot-cli
	UserAgent string
}

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("BaseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BaseURL must use http or https, got %q", u.Scheme)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("Timeout must not be negative")
	}

	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.UserAgent == "" {
		c.UserAgent = "chatbot-cli"
	}
}
