// Package raster draws render items into an RGBA image using fogleman/gg.
//
// Each item is filled with the palette color of its render state, blended
// with the item's alpha, and outlined one pixel inside its rectangle so
// nested elements stay distinguishable.
package raster

import (
	"bytes"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/render"
)

// Palette maps render-state tokens (and "background") to hex colors.
// *theme.Theme satisfies it.
type Palette interface {
	Color(key string) string
}

// Canvas is a render.Target backed by a gg context.
type Canvas struct {
	dc      *gg.Context
	palette Palette
}

// New returns a w x h canvas cleared to the palette's background.
func New(w, h int, p Palette) *Canvas {
	c := &Canvas{dc: gg.NewContext(max(w, 1), max(h, 1)), palette: p}
	c.set(p.Color("background"), 1)
	c.dc.Clear()
	return c
}

// Bounds implements render.Target.
func (c *Canvas) Bounds() geom.Rect {
	return geom.R(0, 0, c.dc.Width(), c.dc.Height())
}

// Draw implements render.Target.
func (c *Canvas) Draw(it render.Item) {
	if it.Rect.Empty() || it.Alpha <= 0 {
		return
	}
	x, y := float64(it.Rect.X), float64(it.Rect.Y)
	w, h := float64(it.Rect.W), float64(it.Rect.H)

	c.set(c.palette.Color(string(it.State)), it.Alpha)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Fill()

	if w >= 2 && h >= 2 {
		c.set(c.palette.Color("background"), it.Alpha)
		c.dc.SetLineWidth(1)
		c.dc.DrawRectangle(x+0.5, y+0.5, w-1, h-1)
		c.dc.Stroke()
	}
}

// Image returns the canvas image.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := c.dc.EncodePNG(w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderTarget, err, "encode png")
	}
	return nil
}

// set selects a hex color; unparseable colors fall back to grey.
func (c *Canvas) set(hex string, alpha float64) {
	col, err := colorful.Hex(hex)
	if err != nil {
		col = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	c.dc.SetRGBA(col.R, col.G, col.B, alpha)
}

// PNG draws a recorded frame and encodes it.
func PNG(f *frame.Frame, p Palette) ([]byte, error) {
	c := New(f.Width, f.Height, p)
	for _, it := range f.Items {
		c.Draw(it)
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
