// Package observability lets a host watch ember at work without ember
// depending on any metrics or tracing backend.
//
// There are four hook sets: [EngineHooks] for settles, dispatches and watch
// cycles; [PipelineHooks] for the load, resolve and render stages;
// [CacheHooks] for frame and artifact lookups; [HTTPHooks] for the inspector
// API. Each starts as a no-op. A host installs its own once at startup:
//
//	observability.SetEngineHooks(promEngineHooks{})
//
// and ember reports through the current set:
//
//	observability.Engine().OnSettle(frame, passes, resolved, duration, err)
//
// Implementations should embed the matching Noop type so they keep compiling
// when a hook is added. Engine hooks take no context because they run inside
// a tick on the goroutine that owns the element tree, and must not block.
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the layout engine's tick.
type EngineHooks interface {
	// OnSettle reports a completed settle loop: the number of passes, the
	// number of element resolutions and the joined per-subtree errors.
	OnSettle(frame uint64, passes, resolved int, duration time.Duration, err error)

	// OnDispatch reports a dispatched event and how many handlers ran.
	OnDispatch(kind string, handlers int, consumed bool)

	// OnCycle reports a watch cycle broken by freezing an element.
	OnCycle(frame uint64, frozen string, length int)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the scene pipeline.
type PipelineHooks interface {
	// Scene events
	OnSceneStart(ctx context.Context, scene string)
	OnSceneComplete(ctx context.Context, scene string, elements int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the inspector HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnSettle(uint64, int, int, time.Duration, error) {}
func (NoopEngineHooks) OnDispatch(string, int, bool)                    {}
func (NoopEngineHooks) OnCycle(uint64, string, int)                     {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSceneStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnSceneComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
