package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/services"
)

// Resource names a kind of upstream payload.
type Resource = dataurls.Resource

const (
	ResourceContext   = dataurls.ResourceContext
	ResourceProjects  = dataurls.ResourceProjects
	ResourceProject   = dataurls.ResourceProject
	ResourceSequences = dataurls.ResourceSequences
	ResourceShots     = dataurls.ResourceShots
	ResourceAssets    = dataurls.ResourceAssets
	ResourceCasting   = dataurls.ResourceCasting
	ResourceEdits     = dataurls.ResourceEdits
)

// Request identifies one payload.
type Request struct {
	Resource  Resource
	ProjectID string
}

func (r Request) String() string {
	if r.ProjectID == "" {
		return string(r.Resource)
	}
	return fmt.Sprintf("%s/%s", r.Resource, r.ProjectID)
}

// Fetcher retrieves raw JSON payloads. Implementations return errors tagged
// with services.ErrTransport or services.ErrMalformedData.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// Locator is implemented by fetchers that can name where a payload lives.
type Locator interface {
	Location(req Request) (string, error)
}

// Func adapts a function to the Fetcher interface.
type Func func(ctx context.Context, req Request) ([]byte, error)

// Fetch implements Fetcher.
func (f Func) Fetch(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// New builds the fetcher selected by configuration: a directory reader when
// data_dir is set, otherwise an HTTP client against base_url.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "build fetcher", "configuration required", nil)
	}
	ds := cfg.DataSource
	if strings.TrimSpace(ds.DataDir) != "" {
		return NewDir(ds.DataDir)
	}
	timeout := time.Duration(ds.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClient(
		ds.BaseURL,
		dataurls.FromConfig(cfg),
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithToken(ds.APIToken),
		WithUserAgent(ds.UserAgent),
		WithLogger(logger),
	)
}
