package engine

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ember/pkg/focus"
	"github.com/matzehuels/ember/pkg/trait"
)

const (
	// DefaultMaxPasses caps the settle passes of one frame.
	DefaultMaxPasses = 32
	// DefaultMaxDispatchDepth caps nested event dispatch.
	DefaultMaxDispatchDepth = 16
)

// Theme supplies default slot values below local and cascaded values.
type Theme interface {
	Default(class, slot string) (any, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTheme sets the theme consulted for slot defaults.
func WithTheme(t Theme) Option {
	return func(e *Engine) { e.theme = t }
}

// WithRegistry shares a class registry with the engine. Classes used to
// create elements are added to it.
func WithRegistry(r *trait.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithMaxPasses sets the settle pass cap.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithMaxDispatchDepth sets the nested dispatch cap.
func WithMaxDispatchDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithNavigator replaces the focus navigator.
func WithNavigator(n focus.Navigator) Option {
	return func(e *Engine) {
		if n != nil {
			e.nav = n
		}
	}
}

// WithClock sets the time source used by Resolve, which has no frame time
// of its own.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
