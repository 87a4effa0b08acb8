// Package dot renders an engine's element tree as a Graphviz diagram.
//
// # Overview
//
// [ToDOT] emits one box per attached element, solid edges from each
// container to its children and dashed edges for watch links, drawn from
// the watched source to the dependent and labeled with the watched trait.
// The diagram is the quickest way to see why a change to one element
// re-resolves another.
//
// # Usage
//
//	src := dot.ToDOT(e, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(src)
//
// # Options
//
//   - Detailed: include each element's class, resolved rect and generation
//
// # Dependencies
//
// SVG rendering runs Graphviz in-process via [github.com/goccy/go-graphviz].
package dot
