// Package render defines the contract between the layout engine and the
// drawing backends.
//
// # Overview
//
// The engine never draws pixels. After a tick has settled, it walks the
// element tree in paint order and hands every visible element to a [Target]
// as an [Item]: its absolute rectangle, its composited alpha and a state token
// for multi-state visuals. Backends decide what to do with it.
//
// Sinks in subpackages:
//
//   - [raster]: PNG images via fogleman/gg
//   - [term]: colored character grids via lipgloss
//   - [dot]: Graphviz diagrams of the element tree and its watch links
//
// [raster]: github.com/matzehuels/ember/pkg/render/raster
// [term]: github.com/matzehuels/ember/pkg/render/term
// [dot]: github.com/matzehuels/ember/pkg/render/dot
package render
