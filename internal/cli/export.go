package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/sketchport/pkg/io"
	"github.com/matzehuels/sketchport/pkg/pipeline"
)

// exportCommand creates the export command for running the full pipeline.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		settleMs   int
		timeoutMs  int
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export [scene.json]",
		Short: "Render a diagram document to PNG, SVG, or JSON",
		Long: `Render a diagram document to PNG, SVG, or JSON.

The export command loads a document from a file, stdin (-), or an http(s)
URL, computes the padded canvas bounds, and renders the requested formats.
PNG defaults to a headless-browser capture so the output matches what an
embedded web view would paint; --backend native rasterizes in-process
without any external binary.

With no argument, export reads stdin when input is piped, or opens an
interactive picker over the JSON files in the working directory.

Results are cached locally for faster subsequent runs.

Examples:
  sketchport export scene.json                      # scene.png at scale 2
  sketchport export scene.json -f svg,json          # multiple formats
  sketchport export scene.json --backend native     # no browser required
  cat scene.json | sketchport export -o out.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyCaptureConfig(&opts)
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if opts.Backend != "" {
				if err := pipeline.ValidateBackend(opts.Backend); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("settle-ms") {
				// 0 disables the settle delay; the pipeline treats 0 as
				// "use default", so map it to the explicit sentinel.
				if settleMs <= 0 {
					opts.SettleDelay = -1
				} else {
					opts.SettleDelay = time.Duration(settleMs) * time.Millisecond
				}
			}
			if cmd.Flags().Changed("timeout-ms") && timeoutMs > 0 {
				opts.Timeout = time.Duration(timeoutMs) * time.Millisecond
			}

			input, err := c.resolveExportInput(args)
			if err != nil {
				return err
			}
			if input == "" {
				printDetail("No selection made")
				return nil
			}
			return c.runExport(cmd.Context(), input, opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), svg, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "png backend: browser (default), native")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "device scale factor (default 2)")
	cmd.Flags().BoolVar(&opts.Transparent, "transparent", false, "keep the canvas background unpainted")
	cmd.Flags().BoolVar(&opts.AllowEmpty, "allow-empty", false, "render a blank padded canvas for empty documents")

	// Capture flags
	cmd.Flags().IntVar(&opts.ViewportWidth, "viewport-width", opts.ViewportWidth, "browser viewport width")
	cmd.Flags().IntVar(&settleMs, "settle-ms", 0, "delay before capture in milliseconds (0 disables)")
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "capture timeout in milliseconds")

	return cmd
}

// resolveExportInput determines the document source when no argument pins
// it: piped stdin wins, otherwise the interactive picker runs. An empty
// return with nil error means the picker was dismissed.
func (c *CLI) resolveExportInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "-", nil
	}
	return pickSceneFile(".")
}

// runExport executes the pipeline and writes the artifacts.
func (c *CLI) runExport(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Source = input
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts:    result.Artifacts,
		formats:      opts.Formats,
		input:        input,
		output:       output,
		elementCount: result.Stats.ElementCount,
		skippedCount: result.Stats.SkippedCount,
		cacheHit:     result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams bundles everything writeArtifacts needs to place
// rendered outputs and report the result.
type artifactWriteParams struct {
	artifacts    map[string][]byte
	formats      []string
	input        string
	output       string
	elementCount int
	skippedCount int
	cacheHit     bool
}

// writeArtifacts writes each rendered format to its output path and
// prints a summary. With a single format and an explicit --output, the
// artifact lands exactly there; otherwise paths derive from the base
// name plus the format extension.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	single := len(p.formats) == 1

	printSuccess("Export complete")
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s artifact", format)
		}

		path := base + "." + format
		if single && p.output != "" {
			path = p.output
		}
		if err := pkgio.WriteArtifact(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(p.elementCount, p.skippedCount, p.cacheHit)

	return nil
}

// knownExtensions is the set of format extensions stripped when deriving
// a base path from --output.
var knownExtensions = map[string]bool{
	pipeline.FormatPNG:  true,
	pipeline.FormatSVG:  true,
	pipeline.FormatJSON: true,
}

// basePath derives the base output path from the output and input paths.
// If output is empty, the base comes from the input source; a format
// extension on output is stripped so multi-format exports fan out from
// one stem.
func basePath(output, input string) string {
	if output == "" {
		return deriveBase(input)
	}
	ext := filepath.Ext(output)
	if knownExtensions[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// deriveBase turns a document source into an output file stem. Stdin has
// no name and falls back to "scene"; URLs use the last path segment.
func deriveBase(input string) string {
	if input == "" || input == "-" {
		return "scene"
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if u, err := url.Parse(input); err == nil {
			if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
				return strings.TrimSuffix(b, path.Ext(b))
			}
		}
		return "scene"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
