// Package pipeline provides the core export pipeline for Sketchport.
//
// This package implements the complete load → bounds → render pipeline
// that can be used by CLI, API, and worker components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Resolve the input source and decode it into a normalized document
//  2. Bounds: Compute the padded canvas geometry enclosing every element
//  3. Render: Generate output in various formats (PNG, SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// The stages run strictly in sequence; a single export never renders
// concurrently with its own load.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "scene.json",
//	    Formats: []string{"png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	// Load only
//	doc, err := runner.Load(ctx, opts)
//
//	// Render with an existing document and bounds
//	artifacts, err := runner.Render(ctx, doc, bounds, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchport/pkg/cache"
	"github.com/matzehuels/sketchport/pkg/render/browser"
	"github.com/matzehuels/sketchport/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultScale is the device scale factor applied to the logical
	// canvas. At 2, a 200×100 canvas exports as a 400×200 pixel image.
	DefaultScale = 2.0

	// DefaultViewportWidth is the browser viewport width for captures.
	// This matches browser.DefaultViewportWidth to maintain consistency.
	DefaultViewportWidth = browser.DefaultViewportWidth

	// DefaultSettleDelay is the pause after render completion before the
	// surface is captured, giving fonts and the compositor time to settle.
	DefaultSettleDelay = browser.DefaultSettleDelay

	// DefaultTimeout bounds the wait for the browser's render-completion
	// signal.
	DefaultTimeout = browser.DefaultTimeout
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// Backend constants for PNG rasterization.
const (
	// BackendBrowser captures the canvas in headless Chrome, matching
	// what an embedded web view would paint.
	BackendBrowser = "browser"

	// BackendNative rasterizes in-process without any external binary.
	BackendNative = "native"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidBackends is the set of supported PNG backends.
var ValidBackends = map[string]bool{
	BackendBrowser: true,
	BackendNative:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the export pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Source and Document must be set:
	// Source names a file path, "-" for stdin, or an http(s) URL, while
	// Document carries an inline document body (as submitted to the API).
	Source     string          `json:"source,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	AllowEmpty bool            `json:"allow_empty,omitempty"` // Render a blank padded canvas instead of failing on zero elements
	Refresh    bool            `json:"refresh,omitempty"`     // Bypass caches and recompute everything

	// Render options
	Formats       []string `json:"formats,omitempty"`
	Backend       string   `json:"backend,omitempty"`
	Scale         float64  `json:"scale,omitempty"`
	Transparent   bool     `json:"transparent,omitempty"` // Keep the canvas background unpainted
	ViewportWidth int      `json:"viewport_width,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger   `json:"-"`
	BrowserPath string        `json:"-"` // Explicit Chrome/Chromium binary, empty for auto-discovery
	SettleDelay time.Duration `json:"-"` // 0 selects the default; negative disables the delay
	Timeout     time.Duration `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed, normalized document.
	Document *scene.Document

	// DocumentHash is the content hash of the normalized document.
	DocumentHash string

	// Bounds is the padded canvas geometry.
	Bounds scene.Bounds

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int
	SkippedCount int
	LoadTime     time.Duration
	BoundsTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the decoded document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: png, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBackend checks that a PNG backend is valid.
func ValidateBackend(backend string) error {
	if !ValidBackends[backend] {
		return fmt.Errorf("invalid backend: %q (must be one of: browser, native)", backend)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a document.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" && len(o.Document) == 0 {
		return fmt.Errorf("source or document is required")
	}
	if o.Source != "" && len(o.Document) > 0 {
		return fmt.Errorf("source and document are mutually exclusive")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Backend == "" {
		o.Backend = BackendBrowser
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.ViewportWidth == 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateBackend(o.Backend); err != nil {
		return err
	}
	if o.Scale < 0 {
		return fmt.Errorf("invalid scale: %v (must be positive)", o.Scale)
	}
	return nil
}

// IsBrowser returns true if PNG output uses the headless browser backend.
func (o *Options) IsBrowser() bool {
	return o.Backend == "" || o.Backend == BackendBrowser
}

// IsNative returns true if PNG output uses the in-process backend.
func (o *Options) IsNative() bool {
	return o.Backend == BackendNative
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	background := ""
	if o.Transparent {
		background = "transparent"
	}
	return cache.ArtifactKeyOpts{
		Format:     format,
		Backend:    o.Backend,
		Scale:      o.Scale,
		Background: background,
	}
}

// BrowserOptions returns the capture settings for the browser backend.
func (o *Options) BrowserOptions() browser.Options {
	return browser.Options{
		ViewportWidth: o.ViewportWidth,
		SettleDelay:   o.SettleDelay,
		Timeout:       o.Timeout,
		ExecPath:      o.BrowserPath,
	}
}
