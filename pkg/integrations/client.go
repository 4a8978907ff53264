package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/pybundle/pkg/cache"
	"github.com/matzehuels/pybundle/pkg/httputil"
	"github.com/matzehuels/pybundle/pkg/observability"
)

// Client is the HTTP layer shared by package index clients: default
// headers, a response cache and bounded retries.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	prefix   string
	ttl      time.Duration
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// NewClient creates a Client. Cache keys are prefixed with prefix
// ("pypi:") and stored for ttl. A nil backend disables caching.
// Headers are applied to all requests; nil is fine.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:     NewHTTPClient(),
		cache:    backend,
		prefix:   prefix,
		ttl:      ttl,
		headers:  headers,
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.http = hc
	}
}

// SetRetry overrides the retry policy.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	c.attempts, c.delay = attempts, delay
}

// Cached returns the cached value for key, or runs fetch (with retries)
// and caches what it stored in v. With refresh the cache read is skipped.
// v must be JSON-serializable.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	full := c.prefix + key
	kind := strings.TrimSuffix(c.prefix, ":")

	if !refresh {
		data, ok, err := c.cache.Get(ctx, full)
		if err == nil && ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, kind)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	if err := httputil.Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil && c.cache.Set(ctx, full, data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(data))
	}
	return nil
}

// Get fetches url and decodes the JSON body into v. A 404 is
// [ErrNotFound]; transport failures and retryable statuses are wrapped in
// [ErrNetwork] and marked for [httputil.Retry].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	if code == http.StatusNotFound {
		return ErrNotFound
	}
	err := httputil.Classify(code)
	switch {
	case err == nil:
		return nil
	case httputil.IsRetryable(err):
		return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}
