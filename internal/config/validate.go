package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataSource(); err != nil {
		return err
	}
	if err := c.validatePalette(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataSource() error {
	switch c.DataSource.Mode {
	case ModeStatic, ModeAPI:
	default:
		return fmt.Errorf("data_source.mode must be %q or %q, got %q", ModeStatic, ModeAPI, c.DataSource.Mode)
	}
	if c.DataSource.DataDir != "" {
		if c.DataSource.Mode != ModeStatic {
			return errors.New("data_source.data_dir requires data_source.mode = \"static\"")
		}
		return nil
	}
	if c.DataSource.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("data_source.base_url is required. Set WATCHTOWER_BASE_URL or edit %s (create with 'watchtower config init')", defaultPath)
	}
	parsed, err := url.Parse(c.DataSource.BaseURL)
	if err != nil {
		return fmt.Errorf("data_source.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("data_source.base_url must use http or https, got %q", c.DataSource.BaseURL)
	}
	return nil
}

func (c *Config) validatePalette() error {
	for _, color := range c.Palette.Colors {
		hex := strings.TrimPrefix(color, "#")
		switch len(hex) {
		case 3, 6, 8:
		default:
			return fmt.Errorf("palette.colors: %q is not a hex color", color)
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return fmt.Errorf("palette.colors: %q is not a hex color", color)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
