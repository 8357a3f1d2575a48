package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/logger"
	"github.com/huangsam/glexport/schema"
)

// TotalPagesHeader carries the number of pages of a list response.
const TotalPagesHeader = "X-Total-Pages"

// Client fetches single pages from a GitLab-compatible API.
// It is safe for concurrent use.
type Client struct {
	baseURL   string
	tokenHash string
	http      *resty.Client
	cache     contract.CacheStore
	cacheTTL  time.Duration
	log       *logger.Logger
}

var _ contract.APIClient = (*Client)(nil) // Compile-time check

// Option customizes a Client.
type Option func(*Client)

// WithCache stores decoded pages in store and serves entries younger than ttl.
// A nil store disables caching.
func WithCache(store contract.CacheStore, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// NewClient builds a client that authenticates every request with token.
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:   baseURL,
		tokenHash: tokenDigest(token),
		http: resty.New().
			SetTimeout(timeout).
			SetBaseURL(baseURL).
			SetHeader("PRIVATE-TOKEN", token).
			SetHeader("Accept", "application/json"),
		log: logger.Named("gitlab"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from a validated config and an optional page cache.
func NewClientFromConfig(cfg *contract.Config, store contract.CacheStore) *Client {
	return NewClient(cfg.APIURL, cfg.Token, cfg.Timeout, WithCache(store, cfg.CacheTTL))
}

// BaseURL returns the API base every request URL is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchGroups implements contract.APIClient.
func (c *Client) FetchGroups(ctx context.Context, url string) (schema.Page[schema.Group], error) {
	return fetchPage(ctx, c, schema.GroupKind, url, mapGroups)
}

// FetchProjects implements contract.APIClient.
func (c *Client) FetchProjects(ctx context.Context, url string) (schema.Page[schema.Project], error) {
	return fetchPage(ctx, c, schema.ProjectKind, url, mapProjects)
}

// FetchCommits implements contract.APIClient.
func (c *Client) FetchCommits(ctx context.Context, url string) (schema.Page[schema.Commit], error) {
	return fetchPage(ctx, c, schema.CommitKind, url, mapCommits)
}

// fetchPage performs one GET, decodes the JSON array into R records and maps them to T.
func fetchPage[R, T any](ctx context.Context, c *Client, kind schema.EntityKind, url string, mapFn func([]R) ([]T, error)) (schema.Page[T], error) {
	key := c.cacheKey(url)
	if page, ok := checkCacheHit[T](c, key); ok {
		c.log.Debug().Str("kind", string(kind)).Str("path", url).Msg("page cache hit")
		return page, nil
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return schema.Page[T]{}, &contract.FetchError{URL: url, Err: err}
	}
	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return schema.Page[T]{}, &contract.FetchError{URL: url, Status: status, Err: errors.New(responseReason(resp))}
	}

	var records []R
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return schema.Page[T]{}, &contract.FetchError{URL: url, Status: status, Err: fmt.Errorf("decode %s page: %w", kind, err)}
	}
	items, err := mapFn(records)
	if err != nil {
		return schema.Page[T]{}, &contract.FetchError{URL: url, Status: status, Err: err}
	}

	page := schema.Page[T]{Items: items}
	if raw := resp.Header().Get(TotalPagesHeader); raw != "" {
		if n, perr := strconv.Atoi(strings.TrimSpace(raw)); perr == nil && n >= 0 {
			page.TotalPages = n
			page.HasTotal = true
		}
	}

	c.log.Debug().
		Str("method", http.MethodGet).
		Str("kind", string(kind)).
		Str("path", url).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Int("items", len(items)).
		Int("total_pages", page.TotalPages).
		Msg("page fetched")

	storePage(c, key, page)
	return page, nil
}

// responseReason picks a short error text for a non-2xx response.
func responseReason(resp *resty.Response) string {
	body := strings.TrimSpace(resp.String())
	if body == "" {
		return http.StatusText(resp.StatusCode())
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return body
}
