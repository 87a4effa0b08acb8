package pipeline

import (
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/render/dot"
	"github.com/matzehuels/ember/pkg/render/raster"
	"github.com/matzehuels/ember/pkg/render/term"
)

// Render generates output artifacts in the requested formats. Tree formats
// (dot, svg) need res.Engine; frame formats only need res.Frame.
func Render(res *Resolved, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dotSrc string

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = frame.Encode(res.Frame, frame.FormatJSON)
		case FormatBSON:
			data, err = frame.Encode(res.Frame, frame.FormatBSON)
		case FormatPNG:
			data, err = raster.PNG(res.Frame, res.Theme)
		case FormatTXT:
			data = []byte(RenderText(res.Frame, res.Theme, opts.Cols, opts.Rows, false))
		case FormatDOT, FormatSVG:
			if res.Engine == nil {
				return nil, errors.New(errors.ErrCodeInternal, "%s output needs the element tree", format)
			}
			if dotSrc == "" {
				dotSrc = dot.ToDOT(res.Engine, dot.Options{Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				data = []byte(dotSrc)
			} else {
				data, err = dot.RenderSVG(dotSrc)
			}
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderTarget, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderText draws a frame onto a cols x rows character grid. With color
// set, cells carry lipgloss background colors from the palette.
func RenderText(f *frame.Frame, p term.Palette, cols, rows int, color bool) string {
	g := term.New(f.Bounds(), cols, rows, p)
	for _, it := range f.Items {
		g.Draw(it)
	}
	if color {
		return g.String()
	}
	return g.Plain()
}
