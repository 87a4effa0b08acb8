package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ember/pkg/cache"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/observability"
	"github.com/matzehuels/ember/pkg/scene"
)

// Runner runs the load, resolve and render stages over a frame and artifact
// cache. `ember render` and the inspector API share it.
//
// Every Execute builds its own engine, so one Runner serves concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. Nil arguments select a NullCache, a
// DefaultKeyer and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → resolve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Load
	loadStart := time.Now()
	observability.Pipeline().OnSceneStart(ctx, opts.SceneLabel())
	sc, sceneHash, err := LoadScene(opts)
	if err != nil {
		observability.Pipeline().OnSceneComplete(ctx, opts.SceneLabel(), 0, time.Since(loadStart), err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Scene = sc
	result.SceneHash = sceneHash
	result.Stats.Nodes = sc.Root.Count()
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded scene",
		"scene", opts.SceneLabel(),
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.LoadTime)

	// Resolve
	resolveStart := time.Now()
	res, frameHit, err := r.ResolveWithCacheInfo(ctx, sc, sceneHash, opts)
	observability.Pipeline().OnSceneComplete(ctx, opts.SceneLabel(), result.Stats.Nodes, time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	opts.SetResolveDefaults(sc)
	opts.SetRenderDefaults()
	result.Frame = res.Frame
	result.Stats.Items = len(res.Frame.Items)
	result.Stats.Faults = len(res.Frame.Faults)
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.CacheInfo.FrameHit = frameHit

	for _, ft := range res.Frame.Faults {
		r.Logger.Warn(ft.Message, "code", ft.Code, "element", ft.Element)
	}
	r.Logger.Info("resolved frame",
		"items", result.Stats.Items,
		"faults", result.Stats.Faults,
		"cached", frameHit,
		"duration", result.Stats.ResolveTime)

	// Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, frameHash, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.FrameHash = frameHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveWithCacheInfo resolves a scene with caching and returns cache hit
// info. On a hit the returned Resolved has no engine.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, sc *scene.Scene, sceneHash string, opts Options) (*Resolved, bool, error) {
	if err := opts.ValidateForResolve(sc); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	cacheKey := r.Keyer.FrameKey(sceneHash, opts.FrameKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "frame")
			if f, err := frame.Decode(data, frame.FormatBSON); err == nil {
				th, err := LoadTheme(sc, opts)
				if err != nil {
					return nil, false, err
				}
				return &Resolved{Scene: sc, Theme: th, Frame: f}, true, nil
			}
			// An undecodable frame is recomputed and overwritten.
		} else {
			observability.Cache().OnCacheMiss(ctx, "frame")
		}
	}

	res, err := Resolve(sc, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := frame.Encode(res.Frame, frame.FormatBSON); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.FrameTTL); err != nil {
			r.Logger.Debug("cache frame", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		}
	}
	return res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns the frame
// hash and cache hit info. Tree formats missing from the cache rebuild the
// element tree when res has none.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Resolved, opts Options) (map[string][]byte, string, bool, error) {
	opts.SetResolveDefaults(res.Scene)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	// Artifacts are keyed by the frame they were drawn from.
	frameData, err := frame.Encode(res.Frame, frame.FormatBSON)
	if err != nil {
		return nil, "", false, err
	}
	frameHash := cache.Hash(frameData)

	artifacts := make(map[string][]byte)
	var missing []string
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, frameHash, true, nil
	}

	sub := opts
	sub.Formats = missing
	if sub.NeedsTree() && res.Engine == nil {
		fresh, err := Resolve(res.Scene, opts)
		if err != nil {
			return nil, "", false, err
		}
		res = &Resolved{Scene: res.Scene, Theme: res.Theme, Frame: res.Frame, Engine: fresh.Engine}
	}
	rendered, err := Render(res, sub)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, frameHash, false, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
