package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds class, rect and generation to node labels. When false
	// only the element name is shown.
	Detailed bool
}

// ToDOT converts e's attached tree and its watch links to DOT source.
// Node identifiers are element paths.
func ToDOT(e *engine.Engine, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	attached := map[engine.Handle]bool{}
	var tree []string
	e.Walk(func(h engine.Handle, _ int) bool {
		attached[h] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", e.Path(h), strings.Join(fmtAttrs(e, h, opts), ", "))
		if p := e.Parent(h); !p.IsNil() {
			tree = append(tree, fmt.Sprintf("  %q -> %q;\n", e.Path(p), e.Path(h)))
		}
		return true
	})

	buf.WriteString("\n")
	for _, line := range tree {
		buf.WriteString(line)
	}
	for _, w := range e.WatchEdges() {
		if !attached[w.Source] || !attached[w.Dependent] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey40, label=%q, constraint=false];\n",
			e.Path(w.Source), e.Path(w.Dependent), w.Trait)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(e *engine.Engine, h engine.Handle, opts Options) []string {
	label := e.Name(h)
	if opts.Detailed {
		label = fmt.Sprintf("%s\n%s\n%s\ngen %d", label, e.Class(h).Name, e.Bounds(h), e.Generation(h))
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !e.Visible(h) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if e.Disabled(h) {
		attrs = append(attrs, "fontcolor=grey50")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderTarget, err, "render svg")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg header with a
// unitless one so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
