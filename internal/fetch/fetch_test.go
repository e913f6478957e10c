package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/services"
	"github.com/satishgoda/watchtower/internal/testsupport"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := fetch.NewClient(" ", dataurls.New("static", "/")); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestClientFetchesStaticTree(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteStaticTree(t, root, testsupport.SampleFixture())
	server := testsupport.ServeStaticTree(t, root)

	client, err := fetch.NewClient(server.URL, dataurls.New("static", "/"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	body, err := client.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceShots, ProjectID: "p1"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !strings.Contains(string(body), `"sh1"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestClientSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data/shots/with-tasks" || r.URL.Query().Get("project_id") != "p1" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "wt-test" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-1" {
			t.Errorf("X-Request-ID = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client, err := fetch.NewClient(server.URL, dataurls.New("api", "/"),
		fetch.WithToken("secret"), fetch.WithUserAgent("wt-test"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-1")
	if _, err := client.Fetch(ctx, fetch.Request{Resource: fetch.ResourceShots, ProjectID: "p1"}); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
}

func TestClientHTTPErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := fetch.NewClient(server.URL, dataurls.New("static", "/"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceProject, ProjectID: "p1"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClientNonJSONIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login</html>`))
	}))
	t.Cleanup(server.Close)

	client, err := fetch.NewClient(server.URL, dataurls.New("static", "/"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceProject, ProjectID: "p1"})
	if !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data error, got %v", err)
	}
}

func TestClientCanceledContextIsSuperseded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := fetch.NewClient(server.URL, dataurls.New("static", "/"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Fetch(ctx, fetch.Request{Resource: fetch.ResourceProject, ProjectID: "p1"})
	if !errors.Is(err, services.ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", err)
	}
}

func TestDirFetcher(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteStaticTree(t, root, testsupport.SampleFixture())

	dir, err := fetch.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir returned error: %v", err)
	}
	body, err := dir.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceProjects})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !strings.Contains(string(body), `"projects"`) {
		t.Fatalf("expected context document, got %s", body)
	}

	_, err = dir.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceShots, ProjectID: "missing"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error for missing file, got %v", err)
	}

	bad := filepath.Join(root, "data", "projects", "p1", "edits.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = dir.Fetch(context.Background(), fetch.Request{Resource: fetch.ResourceEdits, ProjectID: "p1"})
	if !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data, got %v", err)
	}
}

func TestNewDirRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fetch.NewDir(file); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewSelectsFetcher(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	f, err := fetch.New(cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := f.(*fetch.Dir); !ok {
		t.Fatalf("expected directory fetcher, got %T", f)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithBaseURL("http://example.com"), testsupport.WithMode(config.ModeAPI))
	f, err = fetch.New(cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	client, ok := f.(*fetch.Client)
	if !ok {
		t.Fatalf("expected HTTP client, got %T", f)
	}
	loc, err := client.Location(fetch.Request{Resource: fetch.ResourceProject, ProjectID: "p1"})
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc != "http://example.com/api/data/projects/p1" {
		t.Fatalf("Location = %q", loc)
	}
}
