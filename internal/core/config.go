package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Heisenberg208/chatbot-platform/internal/api"
)

// ConfigFile is read from the home directory when present.
const ConfigFile = "config.yaml"

// Config holds the application configuration.
type Config struct {
	Home     string // Holds the credential and config files
	APIURL   string // Remote service base URL
	Timeout  time.Duration
	LogLevel string // debug, info, warn, error
}

// LoadConfig loads configuration from environment variables, layered over
// <home>/config.yaml. Environment variables win.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom is LoadConfig with an explicit home directory, which takes
// precedence over CHATBOT_HOME.
func LoadConfigFrom(home string) (*Config, error) {
	if home == "" {
		home = os.Getenv("CHATBOT_HOME")
	}
	if home == "" {
		var err error
		if home, err = defaultHome(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Home:     home,
		APIURL:   "http://localhost:8000",
		Timeout:  30 * time.Second,
		LogLevel: "info",
	}

	if err := cfg.loadFile(filepath.Join(home, ConfigFile)); err != nil {
		return nil, err
	}

	cfg.APIURL = getEnvOrDefault("CHATBOT_API_URL", cfg.APIURL)
	cfg.LogLevel = strings.ToLower(getEnvOrDefault("LOG_LEVEL", cfg.LogLevel))

	if raw := os.Getenv("CHATBOT_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("CHATBOT_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	// DEBUG flag overrides log level
	if os.Getenv("DEBUG") == "1" {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var file struct {
		APIURL   string `yaml:"api_url"`
		Timeout  string `yaml:"timeout"`
		LogLevel string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if file.APIURL != "" {
		c.APIURL = file.APIURL
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("parse %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	return nil
}

// APIConfig returns the gateway configuration.
func (c *Config) APIConfig() *api.Config {
	return &api.Config{
		BaseURL: c.APIURL,
		Timeout: c.Timeout,
	}
}

func defaultHome() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "chatbot"), nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
