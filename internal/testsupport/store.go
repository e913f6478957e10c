package testsupport

import (
	"testing"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/fetchcache"
)

// MustOpenCache opens the response cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *fetchcache.Store {
	t.Helper()

	store, err := fetchcache.Open(cfg)
	if err != nil {
		t.Fatalf("fetchcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
