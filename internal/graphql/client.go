package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/config"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20

	userAgent = "odb-target-loader/1.0"
)

// ErrResponseTooLarge is returned when a response body exceeds maxResponseBytes.
var ErrResponseTooLarge = errors.New("graphql: response body too large")

// HTTPClient is a concrete implementation of the Client interface that posts
// GraphQL requests using net/http.
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewHTTPClient constructs an HTTPClient from the provided GraphQLConfig.
// It returns an error if cfg.URL is empty or not an absolute http(s) URL.
// When cfg.Timeout is zero or negative, a default timeout of 30 seconds is
// used. The URL is used exactly as given.
func NewHTTPClient(cfg config.GraphQLConfig) (*HTTPClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("graphql: URL is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("graphql: parse URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("graphql: URL must be absolute http(s), got %q", cfg.URL)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   u.String(),
	}, nil
}

// Endpoint returns the URL requests are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Post sends req to the configured endpoint as a JSON POST and returns the
// status code and body of whatever response comes back, 2xx or not.
//
// Post returns an error if:
//   - the request cannot be marshalled, created or sent
//   - the response body cannot be read or exceeds maxResponseBytes
func (c *HTTPClient) Post(ctx context.Context, req Request) (*Response, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("graphql: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("graphql: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graphql: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("graphql: read response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w (HTTP %d)", ErrResponseTooLarge, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// DecodeErrors parses a raw "errors" member into typed entries.
func DecodeErrors(raw json.RawMessage) ([]Error, error) {
	var errs []Error
	if err := json.Unmarshal(raw, &errs); err != nil {
		return nil, fmt.Errorf("graphql: decode errors: %w", err)
	}
	return errs, nil
}
