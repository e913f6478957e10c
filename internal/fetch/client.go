package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/services"
)

const maxPayloadBytes = 64 << 20

// Client fetches resources over HTTP from a static host or the tracker API.
type Client struct {
	baseURL    string
	resolver   dataurls.Resolver
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ Fetcher = (*Client)(nil)
	_ Locator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates an HTTP fetcher rooted at baseURL.
func NewClient(baseURL string, resolver dataurls.Resolver, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "build fetcher", "base url required", nil)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		resolver:   resolver,
		userAgent:  "Watchtower/dev",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "fetch")
	return client, nil
}

// Location returns the absolute URL for a request.
func (c *Client) Location(req Request) (string, error) {
	path, err := c.resolver.Path(req.Resource, req.ProjectID)
	if err != nil {
		return "", err
	}
	return c.baseURL + path, nil
}

// Fetch retrieves the payload for req and checks that it is JSON.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	stage := string(req.Resource)
	endpoint, err := c.Location(req)
	if err != nil {
		return nil, err
	}

	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stage, "build request", "", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, services.Wrap(services.ErrSuperseded, stage, "execute request", fmt.Sprintf("canceled (latency=%v)", latency), err)
		}
		return nil, services.Wrap(services.ErrTransport, stage, "execute request", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("resource fetched",
		logging.String(logging.FieldResource, stage),
		logging.String("url", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrTransport, stage, "execute request",
			fmt.Sprintf("%s returned %d (latency=%v)", endpoint, resp.StatusCode, latency), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stage, "read response", "", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, services.Wrap(services.ErrMalformedData, stage, "read response", "payload exceeds size limit", nil)
	}
	if !json.Valid(body) {
		return nil, services.Wrap(services.ErrMalformedData, stage, "read response", endpoint+" did not return JSON", nil)
	}
	return body, nil
}
