package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchport/pkg/cache"
	"github.com/matzehuels/sketchport/pkg/errors"
	"github.com/matzehuels/sketchport/pkg/observability"
	"github.com/matzehuels/sketchport/pkg/scene"
	"github.com/matzehuels/sketchport/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, resolver, and logger -
// it doesn't store pipeline results. Multiple goroutines can safely use
// the same Runner with different options, though each export owns its
// browser capture exclusively.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Resolver *source.Resolver
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Resolver: source.NewResolver(),
		Logger:   logger,
	}
}

// Execute runs the complete load → bounds → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)
	doc, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, docCount(doc), time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ElementCount = len(doc.Elements)
	result.Stats.SkippedCount = doc.Skipped
	result.CacheInfo.LoadHit = loadHit

	// Compute document hash for cache keys and API responses
	if docData, err := scene.MarshalDocument(doc); err == nil {
		result.DocumentHash = cache.Hash(docData)
	}

	r.Logger.Info("loaded document",
		"elements", result.Stats.ElementCount,
		"skipped", result.Stats.SkippedCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Bounds
	boundsStart := time.Now()
	observability.Pipeline().OnBoundsStart(ctx, len(doc.Elements))
	bounds, err := r.ComputeBounds(doc, opts)
	observability.Pipeline().OnBoundsComplete(ctx, bounds.CanvasWidth(), bounds.CanvasHeight(), time.Since(boundsStart), err)
	if err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}
	result.Bounds = bounds
	result.Stats.BoundsTime = time.Since(boundsStart)

	r.Logger.Info("computed bounds",
		"width", bounds.CanvasWidth(),
		"height", bounds.CanvasHeight(),
		"duration", result.Stats.BoundsTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, bounds, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo resolves and decodes the document with caching and
// returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*scene.Document, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	raw := []byte(opts.Document)
	if opts.Source != "" {
		resolver := r.Resolver
		if resolver == nil {
			resolver = source.NewResolver()
		}
		var err error
		raw, err = resolver.Resolve(ctx, opts.Source)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeParse, err, "read source %s", opts.Source)
		}
	}

	cacheKey := r.Keyer.DocumentKey(cache.Hash(raw))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := decodeCachedDocument(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "document")
				return doc, true, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "document")

	// Decode and normalize
	doc, err := scene.ReadDocument(bytes.NewReader(raw), scene.WithWarnf(opts.Logger.Warnf))
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := encodeCachedDocument(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDocument)
		observability.Cache().OnCacheSet(ctx, "document", len(data))
	}

	return doc, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*scene.Document, error) {
	doc, _, err := r.LoadWithCacheInfo(ctx, opts)
	return doc, err
}

// ComputeBounds returns the padded canvas geometry for doc.
//
// An empty document fails with an EMPTY_DOCUMENT error unless
// opts.AllowEmpty is set, in which case the canvas collapses to the
// padding-only square.
func (r *Runner) ComputeBounds(doc *scene.Document, opts Options) (scene.Bounds, error) {
	if len(doc.Elements) == 0 && opts.AllowEmpty {
		return scene.Degenerate(), nil
	}
	return scene.ComputeBounds(doc.Elements)
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *scene.Document, bounds scene.Bounds, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	// Compute cache key from the normalized document
	docData, err := scene.MarshalDocument(doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize document for cache key")
	}
	docHash := cache.Hash(docData)

	// Try to get all formats from cache (unless refresh requested)
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		allCached := true

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := renderArtifacts(ctx, doc, bounds, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc *scene.Document, bounds scene.Bounds, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, bounds, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// docCount tolerates the nil document of a failed load.
func docCount(doc *scene.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Elements)
}
