// Package remote provides a VectorService adapter for an external
// vector-similarity service spoken to over HTTP JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.VectorService = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 15 * time.Second
	DefaultRequestsPerSecond = 20
	DefaultBurst             = 5
)

// Endpoint paths relative to the base URL.
const (
	pathQuery  = "/api/vector/query"
	pathInsert = "/api/vector/insert"
	pathDelete = "/api/vector/delete"
	pathList   = "/api/vector/list"
)

// ErrRateLimited is returned when the service answers 429.
var ErrRateLimited = errors.New("vector service rate limited")

// Config holds configuration for the remote vector client.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:8000.
	BaseURL string

	// Metric is the native score semantics of the service (default: similarity).
	Metric domain.ScoreMetric

	// Timeout bounds each request (default: 15s).
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests (default: 20).
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 5).
	Burst int

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the vector service.
type Client struct {
	client  *http.Client
	baseURL string
	metric  domain.ScoreMetric
	limiter *RateLimiter
}

type queryRequest struct {
	CollectionID string  `json:"collectionId"`
	SearchText   string  `json:"searchText"`
	TopK         int     `json:"topK"`
	Threshold    float64 `json:"threshold"`
}

type queryResponse struct {
	Results []driven.VectorHit `json:"results"`
}

type insertRequest struct {
	CollectionID string              `json:"collectionId"`
	Items        []driven.VectorItem `json:"items"`
}

type deleteRequest struct {
	CollectionID string  `json:"collectionId"`
	Hashes       []int64 `json:"hashes"`
}

type listRequest struct {
	CollectionID string `json:"collectionId"`
}

type listResponse struct {
	Hashes []int64 `json:"hashes"`
}

// NewClient creates a remote vector client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", domain.ErrVectorServiceUnavailable)
	}
	if cfg.Metric == "" {
		cfg.Metric = domain.ScoreMetricSimilarity
	}
	if !cfg.Metric.IsValid() {
		return nil, fmt.Errorf("%w: unknown score metric %q", domain.ErrInvalidInput, cfg.Metric)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		metric:  cfg.Metric,
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// Query returns up to topK hits for text within one collection.
func (c *Client) Query(
	ctx context.Context, collectionID, text string, topK int, threshold float64,
) ([]driven.VectorHit, error) {
	var resp queryResponse
	err := c.post(ctx, pathQuery, queryRequest{
		CollectionID: collectionID,
		SearchText:   text,
		TopK:         topK,
		Threshold:    threshold,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Insert indexes items into a collection.
func (c *Client) Insert(ctx context.Context, collectionID string, items []driven.VectorItem) error {
	if len(items) == 0 {
		return nil
	}
	return c.post(ctx, pathInsert, insertRequest{CollectionID: collectionID, Items: items}, nil)
}

// Delete removes hashes from a collection.
func (c *Client) Delete(ctx context.Context, collectionID string, hashes []int64) error {
	if len(hashes) == 0 {
		return nil
	}
	return c.post(ctx, pathDelete, deleteRequest{CollectionID: collectionID, Hashes: hashes}, nil)
}

// ListHashes returns every hash indexed for a collection.
func (c *Client) ListHashes(ctx context.Context, collectionID string) ([]int64, error) {
	var resp listResponse
	if err := c.post(ctx, pathList, listRequest{CollectionID: collectionID}, &resp); err != nil {
		return nil, err
	}
	return resp.Hashes, nil
}

// Metric reports the native score semantics of Query results.
func (c *Client) Metric() domain.ScoreMetric {
	return c.metric
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// post sends body as JSON and decodes the response into out when non-nil.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("POST %s: %d in %s", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		return fmt.Errorf("%s: %w", path, ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("vector service error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("vector service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
