// Package pkg provides the core libraries of Ember, a constraint layout and
// reactive trait engine for game-style user interfaces.
//
// # Overview
//
// Ember keeps a tree of UI elements whose sizes and positions are
// expressions over other elements (fill a share of the parent, fit the
// content, mirror a sibling's width, anchor to the right edge). Containers
// publish trait values to their descendants as cascades, and watch links
// re-resolve dependents when a watched element changes. The pkg directory is
// organized into four areas:
//
//  1. Layout primitives - [geom], [size], [position], [anim]
//  2. The engine - [engine] with its building blocks [arena], [trait],
//     [cascade], [watch], [event] and [focus]
//  3. Widgets and documents - [widget], [theme], [scene]
//  4. Output and orchestration - [render], [frame], [loop], [pipeline], [cache]
//
// # Architecture
//
// The typical data flow of a frame:
//
//	TOML scene + theme
//	         ↓
//	    [scene] package (decode and build the element tree)
//	         ↓
//	    [engine] package (settle layout, dispatch input, tick animations)
//	         ↓
//	    [frame] package (capture items, state and faults)
//	         ↓
//	    PNG/TXT/JSON/BSON/DOT/SVG output
//
// # Quick Start
//
// Build a bar and a button and settle them in a 160x32 viewport:
//
//	e := widget.New()
//	root, _ := e.Create(widget.HStack, "root", nil)
//	hp, _ := widget.NewBar(e, "hp", trait.Values{trait.Max: 100, trait.Value: 40})
//	ok, _ := e.Create(widget.Button, "ok", trait.Values{trait.W: 40})
//	_ = e.Append(root, hp)
//	_ = e.Append(root, ok)
//	rects, _ := e.Resolve(root, geom.R(0, 0, 160, 32))
//
// Drive it frame by frame and capture what a backend would draw:
//
//	d := loop.New(e, loop.WithFPS(30))
//	d.Post(event.PointerMove{Pos: geom.Pt(140, 16)})
//	f := d.Step()
//	th, _ := theme.Builtin(theme.DefaultName, widget.Registry())
//	png, _ := raster.PNG(f, th)
//
// # Main Packages
//
// [engine] - The element tree, trait resolution with local, cascade, theme
// and default precedence, the fixed-point layout settle, input dispatch and
// focus navigation. Everything a frame needs runs inside [engine.Engine.Tick].
//
// [size] and [position] - The expression languages for extents and offsets,
// including pivot/complement pairs that split one extent between two
// elements.
//
// [watch] - Directed links between elements. Changes propagate along links
// in generation order; cycles are detected and reported, never looped.
//
// [widget] - The standard classes (panel, stacks, label, button, toggle, bar)
// and the handlers that keep toggles and bars in sync with their traits.
//
// [pipeline] - Load, resolve and render stages shared by the CLI and the
// inspector API, with frame and artifact caching through [cache].
//
// [errors] - Coded errors. Every failure the engine reports carries a code
// and, where it applies, the path of the element involved.
//
// [observability] - Hook interfaces for metrics and tracing. The defaults do
// nothing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/engine/...    # Specific package
//	go test -run Example        # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/geom
// [size]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/size
// [position]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/position
// [anim]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/anim
// [engine]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/engine
// [engine.Engine.Tick]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/engine#Engine.Tick
// [arena]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/arena
// [trait]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/trait
// [cascade]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/cascade
// [watch]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/watch
// [event]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/event
// [focus]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/focus
// [widget]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/widget
// [theme]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/theme
// [scene]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/render
// [frame]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/frame
// [loop]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/loop
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/ember/pkg/observability
package pkg
