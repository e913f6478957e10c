package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that take precedence over the
// config file.
type envOverrides struct {
	BaseURL  string `env:"WATCHTOWER_BASE_URL"`
	Mode     string `env:"WATCHTOWER_DATA_MODE"`
	APIToken string `env:"WATCHTOWER_API_TOKEN"`
	DataDir  string `env:"WATCHTOWER_DATA_DIR"`
	LogLevel string `env:"WATCHTOWER_LOG_LEVEL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := ParseEnv(&overrides); err != nil {
		return err
	}
	if v := strings.TrimSpace(overrides.BaseURL); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := strings.TrimSpace(overrides.Mode); v != "" {
		c.DataSource.Mode = v
	}
	if v := strings.TrimSpace(overrides.APIToken); v != "" {
		c.DataSource.APIToken = v
	}
	if v := strings.TrimSpace(overrides.DataDir); v != "" {
		c.DataSource.DataDir = v
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}
