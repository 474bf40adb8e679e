// Package fonts provides the embedded typeface shared by every render
// backend.
//
// The Go Regular typeface ships as package data, so text is drawn with
// the same glyphs whether it is rasterized natively or inside the
// headless browser, without any system font lookup.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name declared by the host page's
// @font-face rule.
const FontFamily = "Go Regular"

// FallbackFontFamily provides substitutes for contexts where the embedded
// face cannot be loaded.
const FallbackFontFamily = `'Go Regular', 'Helvetica Neue', Arial, sans-serif`

var (
	parsed    *truetype.Font
	parseErr  error
	parseOnce sync.Once
)

// Regular returns the parsed Go Regular typeface. Parsing happens once on
// first access.
func Regular() (*truetype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = truetype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Face builds a rendering face at the given pixel size. The face uses
// 72 DPI so point size and pixel size coincide.
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Cache for the base64-encoded typeface (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// TTFBase64 returns the typeface as a base64 string for use in
// @font-face data URLs. The result is cached after first computation.
func TTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}
