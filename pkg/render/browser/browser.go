// Package browser captures rendered scenes with headless Chrome.
//
// The capture flow writes the host page produced by the canvas package to
// a temporary file, navigates a fresh headless browser instance to it,
// polls for the page's completion flag, waits a short settle delay, and
// screenshots the canvas element. The browser is torn down on every exit
// path; its lifetime never outlives the call.
package browser

import (
	"context"
	stderrors "errors"
	"math"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/sketchport/pkg/errors"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/render/canvas"
)

const (
	// DefaultViewportWidth is the logical width of the emulated browser
	// window.
	DefaultViewportWidth = 1920

	// DefaultSettleDelay is the pause between the completion flag and the
	// screenshot, a safety margin for in-flight paints.
	DefaultSettleDelay = 1000 * time.Millisecond

	// DefaultTimeout bounds the wait for the completion flag.
	DefaultTimeout = 10 * time.Second

	pollInterval = 50 * time.Millisecond
)

// Options tune the capture environment.
type Options struct {
	// ViewportWidth is the emulated window width in logical units.
	ViewportWidth int
	// SettleDelay is the pause after render completion before capture.
	SettleDelay time.Duration
	// Timeout bounds the wait for the page's completion flag.
	Timeout time.Duration
	// ExecPath points at a specific Chrome binary. Empty means lookup in
	// the usual install locations.
	ExecPath string
}

// DefaultOptions returns the standard capture settings.
func DefaultOptions() Options {
	return Options{
		ViewportWidth: DefaultViewportWidth,
		SettleDelay:   DefaultSettleDelay,
		Timeout:       DefaultTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Capture loads the host page in a headless browser and returns the
// canvas element's pixels as PNG bytes. The image is frame.PixelWidth by
// frame.PixelHeight; the device scale factor is emulated so the backing
// store is captured at full resolution.
func Capture(ctx context.Context, page string, frame render.Frame, opts Options) ([]byte, error) {
	o := opts.withDefaults()

	pagePath, err := writeHostPage(page)
	if err != nil {
		return nil, err
	}
	defer os.Remove(pagePath)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(o.ViewportWidth, viewportHeight(frame)),
	)
	if o.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(o.ViewportWidth), int64(viewportHeight(frame)), chromedp.EmulateScale(frame.Scale)),
		chromedp.Navigate(fileURL(pagePath)),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err,
			"start headless browser: install Google Chrome or Chromium, or set the browser path in the configuration")
	}

	if err := awaitCompletion(browserCtx, o.Timeout); err != nil {
		return nil, err
	}
	if o.SettleDelay > 0 {
		if err := chromedp.Run(browserCtx, chromedp.Sleep(o.SettleDelay)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "settle delay")
		}
	}

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Screenshot("#"+canvas.SurfaceID, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "capture canvas screenshot")
	}
	return buf, nil
}

// awaitCompletion polls the page's completion flag until it turns true or
// the timeout elapses.
func awaitCompletion(ctx context.Context, timeout time.Duration) error {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var done bool
	err := chromedp.Run(pollCtx, chromedp.Poll(
		"window."+canvas.DoneFlag+" === true",
		&done,
		chromedp.WithPollingInterval(pollInterval),
	))
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, chromedp.ErrPollingTimeout) {
		return &errors.CaptureTimeoutError{Limit: timeout}
	}
	return errors.Wrap(errors.ErrCodeEnvironment, err, "wait for render completion")
}

func writeHostPage(page string) (string, error) {
	f, err := os.CreateTemp("", "sketchport-*.html")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEnvironment, err, "create host page")
	}
	path := f.Name()
	if _, err := f.WriteString(page); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(errors.ErrCodeEnvironment, err, "write host page")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(errors.ErrCodeEnvironment, err, "write host page")
	}
	return path, nil
}

// viewportHeight sizes the emulated window to the canvas so the surface
// is in view for capture. Chrome rejects zero-height windows.
func viewportHeight(frame render.Frame) int {
	h := int(math.Ceil(frame.Height))
	if h < 1 {
		return 1
	}
	return h
}

func fileURL(path string) string {
	return "file://" + path
}
