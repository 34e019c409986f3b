package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", RequestsPerSecond: -1})
	require.NoError(t, err)
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://vectors.local/"})
	require.NoError(t, err)

	assert.Equal(t, "http://vectors.local", c.BaseURL())
	assert.Equal(t, domain.ScoreMetricSimilarity, c.Metric())
}

func TestNewClient_Invalid(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrVectorServiceUnavailable)

	_, err = NewClient(Config{BaseURL: "http://x", Metric: "cosine"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/vector/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, queryRequest{CollectionID: "lore", SearchText: "dragon", TopK: 5, Threshold: 0.25}, req)

		_, _ = w.Write([]byte(`{"results":[{"hash":1,"score":0.9},{"hash":2,"score":0.4}]}`))
	})

	hits, err := c.Query(context.Background(), "lore", "dragon", 5, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []driven.VectorHit{{Hash: 1, Score: 0.9}, {Hash: 2, Score: 0.4}}, hits)
}

func TestClient_InsertDeleteList(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/api/vector/insert":
			var req insertRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []driven.VectorItem{{Hash: 1, Text: "a"}}, req.Items)
		case "/api/vector/delete":
			var req deleteRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []int64{1}, req.Hashes)
		case "/api/vector/list":
			_, _ = w.Write([]byte(`{"hashes":[3,1]}`))
		}
	})
	ctx := context.Background()

	require.NoError(t, c.Insert(ctx, "lore", []driven.VectorItem{{Hash: 1, Text: "a"}}))
	require.NoError(t, c.Delete(ctx, "lore", []int64{1}))
	hashes, err := c.ListHashes(ctx, "lore")
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 1}, hashes)
	assert.Equal(t, []string{"/api/vector/insert", "/api/vector/delete", "/api/vector/list"}, paths)
}

func TestClient_EmptyWritesSkipRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) })

	require.NoError(t, c.Insert(context.Background(), "lore", nil))
	require.NoError(t, c.Delete(context.Background(), "lore", nil))
	assert.Zero(t, calls.Load())
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index offline", http.StatusServiceUnavailable)
	})

	_, err := c.Query(context.Background(), "lore", "dragon", 5, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "index offline")
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":`))
	})

	_, err := c.Query(context.Background(), "lore", "dragon", 5, 0)
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_RateLimitedOpensBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Query(context.Background(), "lore", "dragon", 5, 0)
	assert.ErrorIs(t, err, ErrRateLimited)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Query(ctx, "lore", "dragon", 5, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "second call waits out the backoff")
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Query(ctx, "lore", "dragon", 5, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Zero(t, retryAfter("-1"))
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(0, 0)
	require.NoError(t, r.Wait(context.Background()))

	r.Backoff(time.Hour)
	r.Backoff(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded, "shorter backoff does not shrink the window")
}
