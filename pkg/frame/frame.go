// Package frame captures resolved frames as serializable snapshots.
//
// A [Frame] is what a render pass produced for one tick: the drawn items in
// paint order plus the failures reported while resolving and rendering.
// Frames encode to JSON for inspection and to BSON as a compact binary
// format for caches and recordings.
package frame

import (
	"github.com/google/uuid"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/render"
)

// Frame is a rendered frame.
type Frame struct {
	ID     uuid.UUID     `json:"id"`
	Scene  string        `json:"scene,omitempty"`
	Seq    uint64        `json:"seq"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Items  []render.Item `json:"items"`
	Faults []Fault       `json:"faults,omitempty"`
}

// Fault is a reported failure in serializable form.
type Fault struct {
	Code    string `json:"code" bson:"code"`
	Element string `json:"element,omitempty" bson:"element,omitempty"`
	Message string `json:"message" bson:"message"`
}

// Bounds returns the frame area.
func (f *Frame) Bounds() geom.Rect { return geom.R(0, 0, f.Width, f.Height) }

// Find returns the first item with the given name.
func (f *Frame) Find(name string) (render.Item, bool) {
	for _, it := range f.Items {
		if it.Name == name {
			return it, true
		}
	}
	return render.Item{}, false
}

// HasFault reports whether the frame recorded a failure with code.
func (f *Frame) HasFault(code errors.Code) bool {
	for _, ft := range f.Faults {
		if ft.Code == string(code) {
			return true
		}
	}
	return false
}

// Recorder is a render target that builds a Frame.
type Recorder struct {
	frame Frame
}

// NewRecorder returns a recorder for a w x h surface.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{frame: Frame{ID: uuid.New(), Width: w, Height: h}}
}

// Bounds implements render.Target.
func (r *Recorder) Bounds() geom.Rect { return r.frame.Bounds() }

// Draw implements render.Target.
func (r *Recorder) Draw(it render.Item) { r.frame.Items = append(r.frame.Items, it) }

// Fail records the coded members of err as faults.
func (r *Recorder) Fail(err error) {
	r.frame.Faults = append(r.frame.Faults, Faults(err)...)
}

// Frame returns the recorded frame.
func (r *Recorder) Frame() *Frame {
	f := r.frame
	return &f
}

// Capture renders e into a new frame of the engine's viewport size. Any
// failures in prior (typically the error returned by Resolve or Tick) are
// recorded alongside the render failures.
func Capture(e *engine.Engine, prior error) *Frame {
	vp := e.Viewport()
	rec := NewRecorder(vp.W, vp.H)
	rec.Fail(prior)
	rec.Fail(e.Render(rec))
	f := rec.Frame()
	f.Seq = e.Frame()
	return f
}

// Faults flattens err into one fault per joined member, expanding nested
// joins. Members without a code become INTERNAL_ERROR faults.
func Faults(err error) []Fault {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Fault
		for _, m := range j.Unwrap() {
			out = append(out, Faults(m)...)
		}
		return out
	}
	var e *errors.Error
	if errors.As(err, &e) {
		return []Fault{{Code: string(e.Code), Element: e.Element, Message: e.Message}}
	}
	return []Fault{{Code: string(errors.ErrCodeInternal), Message: err.Error()}}
}
