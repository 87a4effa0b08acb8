// Package term draws render items onto a character grid for terminals.
//
// The grid maps a rectangle of root coordinates onto cols x rows cells.
// Each item paints an ASCII outline with its name in the top edge and
// colors its cells with the palette color of its render state. [Grid.Plain]
// returns the outline without colors; [Grid.String] renders it with
// lipgloss background colors.
package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/render"
)

// Palette maps render-state tokens to hex colors. *theme.Theme satisfies it.
type Palette interface {
	Color(key string) string
}

type cell struct {
	r     rune
	color string
}

// Grid is a render.Target backed by a cell grid.
type Grid struct {
	area    geom.Rect
	cols    int
	rows    int
	cells   []cell
	palette Palette
}

// New returns a grid of cols x rows cells covering area.
func New(area geom.Rect, cols, rows int, p Palette) *Grid {
	cols, rows = max(cols, 1), max(rows, 1)
	g := &Grid{area: area, cols: cols, rows: rows, cells: make([]cell, cols*rows), palette: p}
	bg := p.Color("background")
	for i := range g.cells {
		g.cells[i] = cell{r: ' ', color: bg}
	}
	return g
}

// Bounds implements render.Target.
func (g *Grid) Bounds() geom.Rect { return g.area }

// Draw implements render.Target.
func (g *Grid) Draw(it render.Item) {
	if it.Alpha <= 0 {
		return
	}
	c := g.cellRect(it.Rect)
	if c.Empty() {
		return
	}
	color := g.palette.Color(string(it.State))
	for y := c.Y; y < c.Bottom(); y++ {
		for x := c.X; x < c.Right(); x++ {
			g.put(x, y, g.edge(c, x, y), color)
		}
	}
	if c.W > 2 && c.H >= 2 {
		for i, r := range []rune(it.Name) {
			if c.X+1+i >= c.Right()-1 {
				break
			}
			g.put(c.X+1+i, c.Y, r, color)
		}
	}
}

func (g *Grid) edge(c geom.Rect, x, y int) rune {
	if c.W < 2 || c.H < 2 {
		return '#'
	}
	top, bottom := y == c.Y, y == c.Bottom()-1
	left, right := x == c.X, x == c.Right()-1
	switch {
	case (top || bottom) && (left || right):
		return '+'
	case top || bottom:
		return '-'
	case left || right:
		return '|'
	}
	return ' '
}

func (g *Grid) put(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y*g.cols+x] = cell{r: r, color: color}
}

// cellRect maps a rectangle in root coordinates to grid cells.
func (g *Grid) cellRect(r geom.Rect) geom.Rect {
	if g.area.Empty() {
		return geom.Rect{}
	}
	x0 := (r.X - g.area.X) * g.cols / g.area.W
	y0 := (r.Y - g.area.Y) * g.rows / g.area.H
	x1 := (r.Right() - g.area.X) * g.cols / g.area.W
	y1 := (r.Bottom() - g.area.Y) * g.rows / g.area.H
	return geom.R(x0, y0, x1-x0, y1-y0)
}

// Plain returns the grid as text without colors.
func (g *Grid) Plain() string {
	var b strings.Builder
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			b.WriteRune(g.cells[y*g.cols+x].r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders the grid with background colors, one style per run of
// equally colored cells.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.rows; y++ {
		row := g.cells[y*g.cols : (y+1)*g.cols]
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].color == row[start].color {
				run.WriteRune(row[end].r)
				end++
			}
			style := lipgloss.NewStyle().Background(lipgloss.Color(row[start].color))
			b.WriteString(style.Render(run.String()))
			start = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}
