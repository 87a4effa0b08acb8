// Package anim provides time-varying scalar value sources.
//
// The engine samples every [Source] it knows about exactly once at the start
// of each tick and treats the sample like any constant: a size, a position or
// an opacity can be bound to a source. Easing curves are out of scope; the
// sources here are constants, externally driven variables and linear tweens.
//
// Sources are used as map keys by the engine, so implementations must be
// comparable. Pointer receivers satisfy this.
package anim

import (
	"math"
	"sync"
	"time"
)

// Source produces a scalar for a given frame time.
type Source interface {
	Sample(now time.Time) float64
}

// Constant is a Source that never changes.
type Constant float64

// Sample returns the constant.
func (c Constant) Sample(time.Time) float64 { return float64(c) }

// Var is a Source whose value is written by an external producer (a timer,
// a network feed) and read by the engine at the next tick. It is safe for
// concurrent use.
type Var struct {
	mu sync.Mutex
	v  float64
}

// NewVar returns a variable holding v.
func NewVar(v float64) *Var { return &Var{v: v} }

// Set stores a new value; it becomes visible at the next sample.
func (x *Var) Set(v float64) {
	x.mu.Lock()
	x.v = v
	x.mu.Unlock()
}

// Sample returns the current value.
func (x *Var) Sample(time.Time) float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.v
}

// Tween interpolates linearly from From to To over Duration starting at Start.
// Before Start it yields From, after Start+Duration it yields To.
type Tween struct {
	From, To float64
	Start    time.Time
	Duration time.Duration
	Loop     bool
}

// Sample returns the interpolated value at now.
func (tw *Tween) Sample(now time.Time) float64 {
	if tw.Duration <= 0 || !now.After(tw.Start) {
		if tw.Duration <= 0 && now.After(tw.Start) {
			return tw.To
		}
		return tw.From
	}
	elapsed := now.Sub(tw.Start)
	if elapsed >= tw.Duration {
		if !tw.Loop {
			return tw.To
		}
		elapsed %= tw.Duration
	}
	t := float64(elapsed) / float64(tw.Duration)
	return tw.From + (tw.To-tw.From)*t
}

// Done reports whether a non-looping tween has reached its end value.
func (tw *Tween) Done(now time.Time) bool {
	return !tw.Loop && !now.Before(tw.Start.Add(tw.Duration))
}

// Round converts a sample to whole pixels, rounding half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}
