package fetchcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/services"
)

// Fetcher stores every successful payload and serves the stored copy when the
// upstream fails with a transport error.
type Fetcher struct {
	next   fetch.Fetcher
	store  *Store
	maxAge time.Duration
	logger *slog.Logger
}

var _ fetch.Fetcher = (*Fetcher)(nil)

// Wrap returns next backed by store. Entries older than maxAge are not served;
// a non-positive maxAge serves entries of any age.
func Wrap(next fetch.Fetcher, store *Store, maxAge time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		next:   next,
		store:  store,
		maxAge: maxAge,
		logger: logging.NewComponentLogger(logger, "fetchcache"),
	}
}

// Fetch implements fetch.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req fetch.Request) ([]byte, error) {
	location := f.location(req)
	body, err := f.next.Fetch(ctx, req)
	if err == nil {
		if putErr := f.store.Put(ctx, string(req.Resource), req.ProjectID, location, body); putErr != nil {
			logging.WarnWithContext(f.logger, "failed to cache response", "cache_write_failed",
				logging.String(logging.FieldResource, string(req.Resource)),
				logging.Error(putErr),
				logging.String(logging.FieldErrorHint, "check that the cache path is writable"),
				logging.String(logging.FieldImpact, "offline fallback will not include this response"),
			)
		}
		return body, nil
	}
	if !errors.Is(err, services.ErrTransport) {
		return nil, err
	}

	entry, ok, getErr := f.store.Get(ctx, string(req.Resource), req.ProjectID, location)
	if getErr != nil || !ok {
		return nil, err
	}
	age := time.Since(entry.FetchedAt)
	if f.maxAge > 0 && age > f.maxAge {
		return nil, err
	}
	logging.WarnWithContext(f.logger, "serving cached response", "cache_fallback",
		logging.String(logging.FieldResource, string(req.Resource)),
		logging.String(logging.FieldProjectID, req.ProjectID),
		logging.Duration("age", age.Round(time.Second)),
		logging.String(logging.FieldErrorKind, services.Classify(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check data_source.base_url and network connectivity"),
		logging.String(logging.FieldImpact, "dashboard shows data from the last successful fetch"),
	)
	return entry.Body, nil
}

func (f *Fetcher) location(req fetch.Request) string {
	if locator, ok := f.next.(fetch.Locator); ok {
		if loc, err := locator.Location(req); err == nil {
			return loc
		}
	}
	return req.String()
}
