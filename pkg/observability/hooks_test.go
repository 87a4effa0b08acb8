package observability_test

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/ember/pkg/cache"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/observability"
	"github.com/matzehuels/ember/pkg/pipeline"
	"github.com/matzehuels/ember/pkg/widget"
)

// recorder logs the events it receives as short strings.
type recorder struct {
	observability.NoopEngineHooks
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) seen(ev string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, ev)
}

func (r *recorder) OnSettle(_ uint64, passes, _ int, _ time.Duration, _ error) {
	if passes > 0 {
		r.add("settle")
	}
}
func (r *recorder) OnDispatch(kind string, _ int, _ bool) { r.add("dispatch:" + kind) }

func (r *recorder) OnSceneStart(context.Context, string)    { r.add("scene") }
func (r *recorder) OnRenderStart(context.Context, []string) { r.add("render") }

func (r *recorder) OnCacheHit(_ context.Context, kind string)        { r.add("hit:" + kind) }
func (r *recorder) OnCacheMiss(_ context.Context, kind string)       { r.add("miss:" + kind) }
func (r *recorder) OnCacheSet(_ context.Context, kind string, _ int) { r.add("set:" + kind) }

func TestDefaultsAreNoop(t *testing.T) {
	observability.Reset()
	if _, ok := observability.Engine().(observability.NoopEngineHooks); !ok {
		t.Errorf("Engine() = %T", observability.Engine())
	}
	if _, ok := observability.Pipeline().(observability.NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", observability.Pipeline())
	}
	if _, ok := observability.Cache().(observability.NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", observability.Cache())
	}
	if _, ok := observability.HTTP().(observability.NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", observability.HTTP())
	}
}

func TestSetNilKeepsCurrentHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	r := &recorder{}
	observability.SetEngineHooks(r)
	observability.SetEngineHooks(nil)
	if observability.Engine() != observability.EngineHooks(r) {
		t.Error("SetEngineHooks(nil) replaced the installed hooks")
	}
}

func TestEngineReportsSettleAndDispatch(t *testing.T) {
	t.Cleanup(observability.Reset)
	r := &recorder{}
	observability.SetEngineHooks(r)

	e := widget.New()
	root, err := e.Create(widget.VStack, "root", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Resolve(root, geom.R(0, 0, 160, 64)); err != nil {
		t.Fatal(err)
	}
	if !r.seen("settle") {
		t.Error("Resolve did not report a settle")
	}

	if err := e.Dispatch(event.New(event.GeometryChanged, root, nil)); err != nil {
		t.Fatal(err)
	}
	if !r.seen("dispatch:geometry_changed") {
		t.Errorf("events = %v, want a geometry_changed dispatch", r.events)
	}
}

const barScene = `
name   = "bars"
width  = 160
height = 32

[root]
class = "bar"
name  = "hp"
value = 1
max   = 2
`

func TestPipelineReportsStagesAndCache(t *testing.T) {
	t.Cleanup(observability.Reset)

	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, nil)
	opts := pipeline.Options{SceneData: barScene, Formats: []string{pipeline.FormatTXT}}

	cold := &recorder{}
	observability.SetPipelineHooks(cold)
	observability.SetCacheHooks(cold)
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	for _, ev := range []string{"scene", "render", "miss:frame", "set:frame", "miss:artifact", "set:artifact"} {
		if !cold.seen(ev) {
			t.Errorf("cold run missing %q in %v", ev, cold.events)
		}
	}

	warm := &recorder{}
	observability.SetPipelineHooks(warm)
	observability.SetCacheHooks(warm)
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	for _, ev := range []string{"hit:frame", "hit:artifact"} {
		if !warm.seen(ev) {
			t.Errorf("warm run missing %q in %v", ev, warm.events)
		}
	}
}

func TestHooksSafeForConcurrentUse(t *testing.T) {
	t.Cleanup(observability.Reset)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					observability.SetCacheHooks(&recorder{})
				} else {
					observability.Cache().OnCacheMiss(context.Background(), "frame")
				}
			}
		}()
	}
	wg.Wait()
}
