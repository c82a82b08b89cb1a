// Package preview draws optimized SVG into a terminal.
//
// The document is rasterised with oksvg/rasterx and printed as half-block
// cells: each cell shows two vertically stacked pixels, the upper one as the
// foreground of '▀' and the lower one as its background. Nothing in the
// markup is ever executed; scripts and external references are ignored by
// the rasteriser.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrNoSize is returned for documents without a usable viewBox.
var ErrNoSize = errors.New("preview: document has no viewBox")

const halfBlock = "▀"

// Options controls the cell grid.
type Options struct {
	// Cols and Rows are the size of the drawing area in terminal cells.
	Cols, Rows int
	// Background fills transparent pixels. Nil means white.
	Background color.Color
}

// Rasterize renders markup into a w by h image, scaled to fit and centered
// while keeping the document's aspect ratio.
func Rasterize(markup string, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", w, h)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("preview: parse: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, ErrNoSize
	}

	scale := min(float64(w)/vw, float64(h)/vh)
	tw, th := vw*scale, vh*scale
	icon.SetTarget((float64(w)-tw)/2, (float64(h)-th)/2, tw, th)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

// Render draws markup as a grid of opts.Cols by opts.Rows cells.
func Render(markup string, opts Options) (string, error) {
	img, err := Rasterize(markup, opts.Cols, opts.Rows*2)
	if err != nil {
		return "", err
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	var b strings.Builder
	for row := 0; row < opts.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < opts.Cols; col++ {
			top := over(img.RGBAAt(col, row*2), bg)
			bottom := over(img.RGBAAt(col, row*2+1), bg)
			b.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render(halfBlock))
		}
	}
	return b.String(), nil
}

// over composites a premultiplied pixel onto an opaque background.
func over(px color.RGBA, bg color.Color) color.RGBA {
	br, bgc, bb, _ := bg.RGBA()
	inv := 255 - uint32(px.A)
	return color.RGBA{
		R: uint8(uint32(px.R) + (br>>8)*inv/255),
		G: uint8(uint32(px.G) + (bgc>>8)*inv/255),
		B: uint8(uint32(px.B) + (bb>>8)*inv/255),
		A: 255,
	}
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
