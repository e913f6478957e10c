package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"WATCHTOWER_BASE_URL", "WATCHTOWER_DATA_MODE", "WATCHTOWER_API_TOKEN", "WATCHTOWER_DATA_DIR", "WATCHTOWER_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "watchtower", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[data_source]\nmode = %q\nbase_url = %q\n", cfg.DataSource.Mode, cfg.DataSource.BaseURL)
	if cfg.DataSource.DataDir != "" {
		fmt.Fprintf(&b, "data_dir = %q\n", cfg.DataSource.DataDir)
	}
	fmt.Fprintf(&b, "\n[cache]\nenabled = %t\npath = %q\nmax_age_hours = 24\n", cfg.Cache.Enabled, cfg.Cache.Path)
	fmt.Fprintf(&b, "\n[logging]\nformat = \"console\"\nlevel = \"error\"\n")
	fmt.Fprintf(&b, "\n[watch]\ndebounce_millis = 20\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
