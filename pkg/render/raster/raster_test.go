package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/render"
)

type palette map[string]string

func (p palette) Color(key string) string {
	if c, ok := p[key]; ok {
		return c
	}
	return p["default"]
}

var testPalette = palette{
	"background": "#000000",
	"default":    "#0000ff",
	"focused":    "#ff0000",
}

func rgb(c *Canvas, x, y int) [3]uint32 {
	r, g, b, _ := c.Image().At(x, y).RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestDrawUsesStateColor(t *testing.T) {
	c := New(40, 20, testPalette)
	c.Draw(render.Item{Rect: geom.R(0, 0, 20, 20), Alpha: 1, State: render.StateDefault})
	c.Draw(render.Item{Rect: geom.R(20, 0, 20, 20), Alpha: 1, State: render.StateFocused})

	tests := []struct {
		name string
		x, y int
		want [3]uint32
	}{
		{"default fill", 10, 10, [3]uint32{0, 0, 255}},
		{"focused fill", 30, 10, [3]uint32{255, 0, 0}},
		{"outline", 20, 10, [3]uint32{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgb(c, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestDrawSkipsTransparent(t *testing.T) {
	c := New(10, 10, testPalette)
	c.Draw(render.Item{Rect: geom.R(0, 0, 10, 10), Alpha: 0, State: render.StateFocused})
	if got := rgb(c, 5, 5); got != [3]uint32{0, 0, 0} {
		t.Errorf("transparent item painted %v", got)
	}
}

func TestPNG(t *testing.T) {
	f := &frame.Frame{Width: 32, Height: 16, Items: []render.Item{
		{Name: "root", Rect: geom.R(0, 0, 32, 16), Alpha: 1, State: render.StateDefault},
	}}
	data, err := PNG(f, testPalette)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("image size = %v", b)
	}
}
