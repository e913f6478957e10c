package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDataSource(); err != nil {
		return err
	}
	c.normalizePalette()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = defaultWatchDebounce
	}
	return nil
}

func (c *Config) normalizeDataSource() error {
	ds := &c.DataSource
	ds.Mode = strings.ToLower(strings.TrimSpace(ds.Mode))
	if ds.Mode == "" {
		ds.Mode = defaultMode
	}
	ds.BaseURL = strings.TrimRight(strings.TrimSpace(ds.BaseURL), "/")
	ds.BasePath = strings.TrimSpace(ds.BasePath)
	if ds.BasePath == "" {
		ds.BasePath = defaultBasePath
	}
	if !strings.HasPrefix(ds.BasePath, "/") {
		ds.BasePath = "/" + ds.BasePath
	}
	if !strings.HasSuffix(ds.BasePath, "/") {
		ds.BasePath += "/"
	}
	ds.APIToken = strings.TrimSpace(ds.APIToken)
	ds.UserAgent = strings.TrimSpace(ds.UserAgent)
	if ds.UserAgent == "" {
		ds.UserAgent = defaultUserAgent
	}
	if ds.RequestTimeout <= 0 {
		ds.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(ds.DataDir) != "" {
		expanded, err := expandPath(strings.TrimSpace(ds.DataDir))
		if err != nil {
			return fmt.Errorf("data_source.data_dir: %w", err)
		}
		ds.DataDir = expanded
	}
	return nil
}

func (c *Config) normalizePalette() {
	colors := make([]string, 0, len(c.Palette.Colors))
	for _, color := range c.Palette.Colors {
		if trimmed := strings.TrimSpace(color); trimmed != "" {
			colors = append(colors, trimmed)
		}
	}
	if len(colors) == 0 {
		colors = append(colors, DefaultPalette...)
	}
	c.Palette.Colors = colors
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	expanded, err := expandPath(strings.TrimSpace(c.Cache.Path))
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = expanded
	if c.Cache.MaxAgeHours < 0 {
		c.Cache.MaxAgeHours = 0
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	}
	return nil
}
