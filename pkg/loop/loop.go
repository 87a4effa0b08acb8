// Package loop drives an engine at a fixed frame rate.
//
// The engine itself is single-threaded. A [Driver] owns it while running:
// other goroutines hand it raw input with [Driver.Post] and arbitrary
// mutations with [Driver.Do], both of which are queued and applied between
// ticks. After every tick the driver renders the tree into a [frame.Frame]
// and publishes it; [Driver.Frame] returns the latest one without locking.
package loop

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/frame"
)

// DefaultFPS is the tick rate used when none is configured.
const DefaultFPS = 30

// Command mutates the engine between ticks.
type Command func(e *engine.Engine) error

// Driver paces engine ticks and publishes rendered frames.
type Driver struct {
	engine *engine.Engine
	fps    float64
	frames int
	now    func() time.Time
	log    *log.Logger
	scene  string
	onTick func(*frame.Frame)

	mu      sync.Mutex
	inputs  []event.Input
	pending []Command

	last  atomic.Pointer[frame.Frame]
	ticks atomic.Uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithFPS sets the tick rate. Non-positive values keep the default.
func WithFPS(fps float64) Option {
	return func(d *Driver) {
		if fps > 0 {
			d.fps = fps
		}
	}
}

// WithMaxFrames stops Run after n ticks. Zero means run until the context
// is done.
func WithMaxFrames(n int) Option {
	return func(d *Driver) { d.frames = n }
}

// WithClock replaces time.Now as the tick timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger for per-tick failures.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithScene labels published frames with a scene name.
func WithScene(name string) Option {
	return func(d *Driver) { d.scene = name }
}

// OnFrame registers a callback invoked on the driver goroutine with every
// published frame.
func OnFrame(fn func(*frame.Frame)) Option {
	return func(d *Driver) { d.onTick = fn }
}

// New returns a driver for e.
func New(e *engine.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine: e,
		fps:    DefaultFPS,
		now:    time.Now,
		log:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Post queues raw input for the next tick. It is safe for concurrent use.
func (d *Driver) Post(in ...event.Input) {
	d.mu.Lock()
	d.inputs = append(d.inputs, in...)
	d.mu.Unlock()
}

// Do queues a command for the next tick. It is safe for concurrent use.
func (d *Driver) Do(cmd Command) {
	d.mu.Lock()
	d.pending = append(d.pending, cmd)
	d.mu.Unlock()
}

// Frame returns the most recently published frame, or nil before the first
// tick. It is safe for concurrent use.
func (d *Driver) Frame() *frame.Frame { return d.last.Load() }

// Ticks returns the number of ticks run so far.
func (d *Driver) Ticks() uint64 { return d.ticks.Load() }

// Run ticks the engine until ctx is done or the frame limit is reached.
// It returns nil when the frame limit stops it and ctx.Err() otherwise.
func (d *Driver) Run(ctx context.Context) error {
	lim := rate.NewLimiter(rate.Limit(d.fps), 1)
	for n := 0; d.frames == 0 || n < d.frames; n++ {
		if err := lim.Wait(ctx); err != nil {
			// The next tick would land past the deadline.
			<-ctx.Done()
			return ctx.Err()
		}
		d.Step()
	}
	return nil
}

// Step runs one tick synchronously: queued commands, then queued input,
// then Tick, then render. It must not be called concurrently with Run.
func (d *Driver) Step() *frame.Frame {
	d.mu.Lock()
	cmds, inputs := d.pending, d.inputs
	d.pending, d.inputs = nil, nil
	d.mu.Unlock()

	var errs []error
	for _, cmd := range cmds {
		if err := cmd(d.engine); err != nil {
			errs = append(errs, err)
		}
	}
	d.engine.PostInput(inputs...)
	errs = append(errs, d.engine.Tick(d.now()))

	f := frame.Capture(d.engine, errors.Join(errs...))
	f.Scene = d.scene
	for _, ft := range f.Faults {
		d.log.Warn(ft.Message, "code", ft.Code, "element", ft.Element, "frame", f.Seq)
	}
	d.last.Store(f)
	d.ticks.Add(1)
	if d.onTick != nil {
		d.onTick(f)
	}
	return f
}
