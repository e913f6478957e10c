package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/satishgoda/watchtower/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// By default it reads the sample project fixture from a static tree on disk.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.DataSource.Mode = config.ModeStatic
	cfgVal.DataSource.BaseURL = "http://127.0.0.1:0"
	cfgVal.Cache.Path = filepath.Join(base, "cache", "responses.db")
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	dataDir := filepath.Join(base, "public")
	WriteStaticTree(t, dataDir, SampleFixture())
	cfgVal.DataSource.DataDir = dataDir

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBaseURL switches the config to HTTP fetching against url.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataSource.BaseURL = url
		b.cfg.DataSource.DataDir = ""
	}
}

// WithMode sets the data source mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataSource.Mode = mode
	}
}

// WithDataDir points the config at an existing static tree.
func WithDataDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataSource.DataDir = dir
	}
}

// WithCache enables the response cache in the test temp directory.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// WithPalette overrides the palette colors.
func WithPalette(colors ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Palette.Colors = append([]string(nil), colors...)
	}
}

