// Package cli implements the sketchport command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchport/pkg/buildinfo"
	"github.com/matzehuels/sketchport/pkg/cache"
	"github.com/matzehuels/sketchport/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sketchport"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the layered
// configuration (defaults, sketchport.toml, SKETCHPORT_* environment).
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: loadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sketchport",
		Short:        "Sketchport renders diagram documents to images",
		Long:         `Sketchport is a CLI tool for rendering diagram documents (rectangles, diamonds, arrows, and text with explicit geometry) to PNG, SVG, or normalized JSON, in the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend from config. The file backend
// degrades to a null cache when the directory cannot be resolved, so an
// export never fails just because caching is unavailable.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == cacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == cacheBackendRedis {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sketchport/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyCaptureConfig copies configured capture settings onto pipeline
// options. Flags write the same fields afterwards, so flags win.
func (c *CLI) applyCaptureConfig(opts *pipeline.Options) {
	if c.Config.Capture.SettleMs > 0 {
		opts.SettleDelay = time.Duration(c.Config.Capture.SettleMs) * time.Millisecond
	}
	if c.Config.Capture.TimeoutMs > 0 {
		opts.Timeout = time.Duration(c.Config.Capture.TimeoutMs) * time.Millisecond
	}
	if c.Config.Capture.ViewportWidth > 0 {
		opts.ViewportWidth = c.Config.Capture.ViewportWidth
	}
	if c.Config.Capture.Scale > 0 {
		opts.Scale = c.Config.Capture.Scale
	}
	if c.Config.Capture.BrowserPath != "" {
		opts.BrowserPath = c.Config.Capture.BrowserPath
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
