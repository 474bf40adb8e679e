// Package httputil provides HTTP utilities for fetching remote scene documents.
//
// # Overview
//
// This package provides the infrastructure behind URL render sources:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores fetched documents in the filesystem (~/.cache/sketchport/)
// with configurable TTL. Re-exporting a remote scene skips the network
// entirely while the cached copy is fresh.
//
// Usage:
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	var body []byte
//	ok, _ := cache.Get("scene:"+url, &body) // Check cache
//	if !ok {
//	    body = fetchFromURL(url)
//	    cache.Set("scene:"+url, body) // Store for later
//	}
//
// Cache keys should be namespaced by source kind to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] trigger another attempt, so
// a 404 fails fast while a flaky connection gets a second chance:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchOnce(url)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/sketchport/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `sketchport cache clear` or by deleting
// the cache directory.
package httputil
