// Package engine implements the retained element tree and its reactive
// layout: trait resolution with cascades, the two-phase layout resolver, the
// watch-graph driven invalidation loop, event dispatch and the render pass.
//
// # Overview
//
// Elements live in an arena and are addressed by [Handle]. Each element has
// a [trait.Class] declaring its slots and capabilities, an ordered list of
// owned children, local trait overrides, an optional published cascade table
// and a resolved rectangle in its parent's content space.
//
// # Ticks
//
// The engine is single-threaded. One tick runs, in order:
//
//  1. sample every animation source once
//  2. map queued raw input to semantic events and dispatch them
//  3. settle: re-resolve dirty subtrees until nothing is dirty
//
// after which [Engine.Render] may hand the resolved geometry to a render
// target. Mutations made by handlers are settled before the tick returns, so
// a render never observes a half-applied change.
//
// # Settling
//
// Invalidation marks elements dirty and queues them. Each settle pass takes
// the queued elements, climbs from each to its layout boundary (the parent,
// or further up while the parent fits its content), resolves those subtrees
// and then feeds every changed rectangle to the watch graph, which queues the
// dependents for the next pass. The number of passes is capped; subtrees
// still dirty at the cap fail for the frame with a LAYOUT_RESOLUTION error.
//
// # Failures
//
// Failures are isolated per subtree and returned joined from [Engine.Resolve]
// and [Engine.Tick]:
//
//   - CONFIGURATION: a Fit container holds a child that needs the container's
//     extent (Fill, Pivotable). That container keeps its previous rectangle.
//   - CASCADE_RESOLUTION: a watch cycle. The participant that closed the loop
//     keeps its last good rectangle for the frame.
//   - LAYOUT_RESOLUTION: the settle pass cap or the nested dispatch depth cap
//     was exceeded.
//   - RENDER_TARGET: an element extends past the render target; it is drawn
//     clamped.
//
// Every failure is also logged with the offending element's path.
package engine
