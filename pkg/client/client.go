// Package client provides a Go HTTP client for the property listings API
// with retry on server and network errors.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/property-listings/pkg/metrics"
	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	clientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "property_client_requests_total",
		Help: "Total API requests by path and status",
	}, []string{"path", "status"})

	clientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "property_client_request_duration_seconds",
		Help:    "API request duration in seconds by path, including retries",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"path"})
)

// maxErrorBody bounds how much of an error response is kept as the message.
const maxErrorBody = 4 << 10

// Client calls the property listings API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, e.g. http://localhost:8080
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout per attempt
	Timeout time.Duration

	// Retry policy for server and network errors
	Retry RetryConfig
}

// DefaultConfig returns a default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "property-listings-client/0.1.0",
		Timeout:   10 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "property-client").Logger(),
	}, nil
}

// List fetches every property.
func (c *Client) List(ctx context.Context) ([]properties.Property, error) {
	var out []properties.Property
	if err := c.getJSON(ctx, "/properties", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one property. A missing property yields an error matching
// properties.ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (*properties.Property, error) {
	var out properties.Property
	if err := c.getJSON(ctx, "/properties/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics fetches the cache metrics snapshot.
func (c *Client) Metrics(ctx context.Context) (metrics.Snapshot, error) {
	var out metrics.Snapshot
	if err := c.getJSON(ctx, "/cache/metrics", &out); err != nil {
		return metrics.Snapshot{}, err
	}
	return out, nil
}

// getJSON GETs path and decodes a 200 body into v, retrying per the
// configured policy.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	start := time.Now()
	defer func() {
		clientRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	return retryWithBackoff(ctx, c.config.Retry, func() error {
		return c.attempt(ctx, path, v)
	})
}

// attempt performs a single request.
func (c *Client) attempt(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientRequestsTotal.WithLabelValues(path, "network_error").Inc()
		c.logger.Warn().Err(err).Str("path", path).Msg("HTTP request failed")
		return &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	clientRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    errorMessage(resp),
		}
		if apiErr.ErrorClass == "" {
			apiErr.ErrorClass = ErrorClassClient
		}
		if resp.StatusCode == http.StatusNotFound {
			apiErr.Err = properties.ErrNotFound
		}

		c.logger.Debug().
			Str("path", path).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(apiErr.ErrorClass)).
			Msg("API request error")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage extracts the {"error": ...} message from a response body,
// falling back to the status text.
func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, properties.ErrNotFound)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
