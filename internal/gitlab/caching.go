package gitlab

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/glexport/schema"
)

// currentCacheVersion defines the version of the cached page layout
const currentCacheVersion = 1

// tokenDigest identifies a credential without storing it
func tokenDigest(token string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(token)))
}

// cacheKey derives a stable key from the base URL, the token and the request URL.
// Pages are only shared between clients that authenticate with the same token.
func (c *Client) cacheKey(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(c.baseURL+"\x00"+c.tokenHash+"\x00"+url)))
}

// checkCacheHit attempts to retrieve and validate a cached page
func checkCacheHit[T any](c *Client, key string) (schema.Page[T], bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return schema.Page[T]{}, false
	}
	data, version, ts, err := c.cache.Get(key)
	if err != nil {
		return schema.Page[T]{}, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > c.cacheTTL {
		return schema.Page[T]{}, false
	}
	var page schema.Page[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return schema.Page[T]{}, false
	}
	return page, true
}

// storePage writes a decoded page to the cache, ignoring failures
func storePage[T any](c *Client, key string, page schema.Page[T]) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		c.log.Warn().Err(err).Msg("failed to store page in cache")
	}
}
