package fetchcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/fetchcache"
	"github.com/satishgoda/watchtower/internal/services"
)

func openStore(t *testing.T) *fetchcache.Store {
	t.Helper()
	store, err := fetchcache.OpenPath(filepath.Join(t.TempDir(), "cache", "responses.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "shots", "p1", "loc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, "shots", "p1", "loc", []byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "shots", "p1", "loc", []byte(`[2]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	entry, ok, err := store.Get(ctx, "shots", "p1", "loc")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(entry.Body) != `[2]` {
		t.Fatalf("body = %s", entry.Body)
	}
	if entry.FetchedAt.IsZero() {
		t.Fatal("expected fetched_at to be set")
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")
	store, err := fetchcache.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.Put(context.Background(), "project", "p1", "loc", []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	reopened, err := fetchcache.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	stats, err := reopened.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 || stats.Bytes != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestPruneAll(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, resource := range []string{"shots", "assets"} {
		if err := store.Put(ctx, resource, "p1", resource, []byte(`[]`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	removed, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected fresh entries to survive, removed %d", removed)
	}
	removed, err = store.Prune(ctx, 0)
	if err != nil {
		t.Fatalf("Prune all: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
}

func TestFetcherFallsBackOnTransportError(t *testing.T) {
	store := openStore(t)
	fail := false
	upstream := fetch.Func(func(ctx context.Context, req fetch.Request) ([]byte, error) {
		if fail {
			return nil, services.Wrap(services.ErrTransport, string(req.Resource), "execute request", "connection refused", nil)
		}
		return []byte(`{"id":"p1"}`), nil
	})
	cached := fetchcache.Wrap(upstream, store, time.Hour, nil)
	req := fetch.Request{Resource: fetch.ResourceProject, ProjectID: "p1"}

	if _, err := cached.Fetch(context.Background(), req); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	fail = true
	body, err := cached.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if string(body) != `{"id":"p1"}` {
		t.Fatalf("body = %s", body)
	}

	other := fetch.Request{Resource: fetch.ResourceShots, ProjectID: "p1"}
	if _, err := cached.Fetch(context.Background(), other); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error on miss, got %v", err)
	}
}

func TestFetcherDoesNotMaskMalformedData(t *testing.T) {
	store := openStore(t)
	req := fetch.Request{Resource: fetch.ResourceShots, ProjectID: "p1"}
	if err := store.Put(context.Background(), string(req.Resource), req.ProjectID, req.String(), []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	upstream := fetch.Func(func(ctx context.Context, req fetch.Request) ([]byte, error) {
		return nil, services.Wrap(services.ErrMalformedData, "shots", "read response", "not json", nil)
	})
	cached := fetchcache.Wrap(upstream, store, 0, nil)
	if _, err := cached.Fetch(context.Background(), req); !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data to pass through, got %v", err)
	}
}
