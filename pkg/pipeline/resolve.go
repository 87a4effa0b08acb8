package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/ember/pkg/cache"
	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/scene"
	"github.com/matzehuels/ember/pkg/theme"
	"github.com/matzehuels/ember/pkg/widget"
)

// epoch is the clock of pipeline runs; frames depend only on their inputs.
var epoch = time.Unix(0, 0).UTC()

// Resolved is the output of the resolve stage.
type Resolved struct {
	Scene *scene.Scene
	Theme *theme.Theme
	Frame *frame.Frame

	// Engine holds the settled tree. It is nil when the frame came from
	// cache; [Resolve] rebuilds it on demand.
	Engine *engine.Engine
}

// LoadScene reads the scene named by opts and returns it with the content
// hash of its document.
func LoadScene(opts Options) (*scene.Scene, string, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", err
	}
	data := []byte(opts.SceneData)
	if opts.Scene != "" {
		var err error
		if data, err = os.ReadFile(opts.Scene); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene %s", opts.Scene)
		}
	}
	sc, err := scene.Parse(data)
	if err != nil {
		return nil, "", err
	}
	if opts.Scene != "" {
		sc.Dir = filepath.Dir(opts.Scene)
	}
	return sc, cache.Hash(data), nil
}

// LoadTheme returns the theme selected by opts. A theme named by the scene
// itself is resolved relative to the scene file.
func LoadTheme(sc *scene.Scene, opts Options) (*theme.Theme, error) {
	reg := widget.Registry()
	if sc != nil && opts.Theme == sc.Theme {
		if th, err := sc.LoadTheme(reg); th != nil || err != nil {
			return th, err
		}
	}
	name := opts.Theme
	if name == "" {
		name = DefaultTheme
	}
	return theme.Resolve(name, reg)
}

// Resolve builds the scene, settles it against the viewport, runs the
// requested extra ticks and captures the frame. Layout failures do not fail
// the stage; they are recorded as frame faults.
func Resolve(sc *scene.Scene, opts Options) (*Resolved, error) {
	if err := opts.ValidateForResolve(sc); err != nil {
		return nil, err
	}
	th, err := LoadTheme(sc, opts)
	if err != nil {
		return nil, err
	}
	e := widget.New(
		engine.WithTheme(th),
		engine.WithLogger(opts.Logger),
		engine.WithClock(func() time.Time { return epoch }),
	)
	root, err := scene.Build(e, sc)
	if err != nil {
		return nil, err
	}

	var errs []error
	if _, err := e.Resolve(root, geom.R(0, 0, opts.Width, opts.Height)); err != nil {
		errs = append(errs, err)
	}
	for i := 1; i <= opts.Ticks; i++ {
		if err := e.Tick(epoch.Add(time.Duration(i) * time.Second / DefaultFPS)); err != nil {
			errs = append(errs, err)
		}
	}

	f := frame.Capture(e, errors.Join(errs...))
	f.Scene = sc.Name
	if f.Scene == "" {
		f.Scene = opts.SceneLabel()
	}
	return &Resolved{Scene: sc, Theme: th, Frame: f, Engine: e}, nil
}
