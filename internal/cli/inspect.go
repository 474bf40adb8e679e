package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchport/pkg/pipeline"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/scene"
)

// inspectCommand creates the inspect command for examining documents.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		jsonOut    bool
		allowEmpty bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <scene.json>",
		Short: "Parse a diagram document and report its geometry",
		Long: `Parse a diagram document and report its geometry.

The inspect command runs the load and bounds stages without rendering:
it decodes the document, applies style normalization, counts elements by
kind, and computes the padded canvas size the export would use. Use it to
check what an export will produce, or to see which elements a malformed
document would skip.

The source may be a file path, - for stdin, or an http(s) URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], jsonOut, allowEmpty, noCache)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit a machine-readable report")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "report a blank padded canvas for empty documents")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// inspectReport is the machine-readable inspect output.
type inspectReport struct {
	Source       string         `json:"source"`
	Elements     int            `json:"elements"`
	Skipped      int            `json:"skipped"`
	Kinds        map[string]int `json:"kinds"`
	Bounds       scene.Bounds   `json:"bounds"`
	CanvasWidth  float64        `json:"canvas_width"`
	CanvasHeight float64        `json:"canvas_height"`
	Scale        float64        `json:"scale"`
	PixelWidth   int            `json:"pixel_width"`
	PixelHeight  int            `json:"pixel_height"`
}

// runInspect loads the document and prints the geometry report.
func (c *CLI) runInspect(ctx context.Context, input string, jsonOut, allowEmpty, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Source:     input,
		AllowEmpty: allowEmpty,
		Logger:     c.Logger,
	}

	prog := newProgress(c.Logger)
	doc, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	prog.done(fmt.Sprintf("Parsed %d elements", doc.Count()))

	bounds, err := runner.ComputeBounds(doc, opts)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	scale := c.Config.Capture.Scale
	if scale <= 0 {
		scale = pipeline.DefaultScale
	}
	frame := render.NewFrame(bounds, scale)

	kinds := make(map[string]int)
	for _, el := range doc.Elements {
		kinds[string(el.Type())]++
	}

	report := inspectReport{
		Source:       input,
		Elements:     doc.Count(),
		Skipped:      doc.Skipped,
		Kinds:        kinds,
		Bounds:       bounds,
		CanvasWidth:  bounds.CanvasWidth(),
		CanvasHeight: bounds.CanvasHeight(),
		Scale:        scale,
		PixelWidth:   frame.PixelWidth(),
		PixelHeight:  frame.PixelHeight(),
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

// printReport renders the human-readable inspect summary.
func printReport(r inspectReport) {
	printSuccess("Document OK")
	printKeyValue("Source", r.Source)
	printKeyValue("Elements", formatKinds(r.Elements, r.Kinds))
	if r.Skipped > 0 {
		printKeyValue("Skipped", fmt.Sprintf("%d", r.Skipped))
	}
	printKeyValue("Bounds", fmt.Sprintf("x [%g, %g]  y [%g, %g]",
		r.Bounds.MinX, r.Bounds.MaxX, r.Bounds.MinY, r.Bounds.MaxY))
	printKeyValue("Canvas", fmt.Sprintf("%g × %g (padding %g)",
		r.CanvasWidth, r.CanvasHeight, scene.Padding))
	printKeyValue("Output", fmt.Sprintf("%d × %d px at scale %g",
		r.PixelWidth, r.PixelHeight, r.Scale))
	printNewline()
	printNextStep("Export", "sketchport export "+r.Source)
}

// formatKinds summarizes element counts by kind, e.g. "5 (3 rectangle, 2 arrow)".
func formatKinds(total int, kinds map[string]int) string {
	if total == 0 {
		return "0"
	}
	// Stable order matching the draw order documentation.
	order := []string{
		string(scene.TypeRectangle),
		string(scene.TypeDiamond),
		string(scene.TypeArrow),
		string(scene.TypeText),
	}
	parts := make([]string, 0, len(order))
	for _, kind := range order {
		if n := kinds[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d", total)
	}
	out := fmt.Sprintf("%d (", total)
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out + ")"
}
