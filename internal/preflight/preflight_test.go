package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/satishgoda/watchtower/internal/config"
)

func TestCheckDataTree_OK(t *testing.T) {
	root := t.TempDir()
	ctxFile := filepath.Join(root, "data", "projects", "context.json")
	if err := os.MkdirAll(filepath.Dir(ctxFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ctxFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDataTree("test", root)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckDataTree_MissingContext(t *testing.T) {
	result := CheckDataTree("test", t.TempDir())
	if result.Passed {
		t.Fatal("expected failure without context.json")
	}
}

func TestCheckDataTree_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDataTree("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableDir(t *testing.T) {
	dir := t.TempDir()
	if result := CheckWritableDir("test", dir); !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	missing := filepath.Join(dir, "a", "b")
	result := CheckWritableDir("test", missing)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if result.Detail != missing+" (will be created)" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func providerConfig(url, mode, token string) *config.Config {
	cfg := config.Default()
	cfg.DataSource.BaseURL = url
	cfg.DataSource.Mode = mode
	cfg.DataSource.APIToken = token
	cfg.DataSource.BasePath = "/"
	return &cfg
}

func TestCheckProvider_API(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data/user/context" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckProvider(context.Background(), providerConfig(srv.URL, config.ModeAPI, "good")); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := CheckProvider(context.Background(), providerConfig(srv.URL, config.ModeAPI, "bad"))
	if result.Passed || result.Detail != "auth failed (check api_token)" {
		t.Fatalf("expected auth failure, got: %+v", result)
	}
	result = CheckProvider(context.Background(), providerConfig(srv.URL, config.ModeStatic, ""))
	if result.Passed {
		t.Fatal("expected static path to 404 on an API server")
	}
}

func TestCheckProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if result := CheckProvider(context.Background(), providerConfig(url, config.ModeAPI, "")); result.Passed {
		t.Fatal("expected failure for closed server")
	}
}

func TestRunAllSelectsChecks(t *testing.T) {
	cfg := config.Default()
	cfg.DataSource.DataDir = t.TempDir()
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache", "responses.db")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 || results[0].Name != "Data directory" || results[1].Name != "Cache directory" {
		t.Fatalf("results = %+v", results)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Data directory" {
		t.Fatalf("failed = %+v", failed)
	}
}
