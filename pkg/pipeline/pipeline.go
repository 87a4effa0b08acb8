// Package pipeline provides the scene processing pipeline for ember.
//
// This package implements the complete load → resolve → render pipeline that
// is shared by the CLI commands and the inspector server, so both produce
// identical frames and artifacts for the same inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate a TOML scene
//  2. Resolve: Build the element tree, settle its layout, run optional
//     ticks and capture the rendered [frame.Frame]
//  3. Render: Produce artifacts from the frame (json, bson, png, txt) or
//     from the element tree (dot, svg)
//
// Frames and artifacts are cached by content hash through [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scene:   "examples/scenes/hud.toml",
//	    Formats: []string{"png", "txt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ember/pkg/cache"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/scene"
	"github.com/matzehuels/ember/pkg/theme"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the viewport width used when neither the options nor
	// the scene set one.
	DefaultWidth = 640

	// DefaultHeight is the viewport height used when neither the options nor
	// the scene set one.
	DefaultHeight = 480

	// DefaultFPS is the simulated frame rate of extra ticks.
	DefaultFPS = 30

	// MaxTicks bounds the number of extra ticks one run may request.
	MaxTicks = 10000

	// CellWidth and CellHeight are the root-coordinate extents of one
	// character cell in txt output.
	CellWidth  = 8
	CellHeight = 16
)

// DefaultTheme is the theme used when neither the options nor the scene
// name one.
const DefaultTheme = theme.DefaultName

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatBSON = "bson"
	FormatPNG  = "png"
	FormatTXT  = "txt"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatBSON: true,
	FormatPNG:  true,
	FormatTXT:  true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// treeFormats are rendered from the element tree rather than the frame.
var treeFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Scene     string `json:"scene,omitempty"`      // Path to a scene file
	SceneData string `json:"scene_data,omitempty"` // Inline scene document, used when Scene is empty
	Refresh   bool   `json:"refresh,omitempty"`

	// Resolve options
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Ticks  int    `json:"ticks,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Cols     int      `json:"cols,omitempty"`
	Rows     int      `json:"rows,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the loaded scene.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene document.
	SceneHash string

	// Frame is the captured frame.
	Frame *frame.Frame

	// FrameHash is the content hash of the encoded frame.
	FrameHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes       int
	Items       int
	Faults      int
	LoadTime    time.Duration
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FrameHit  bool // Whether the frame came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, formatList())
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatList() string {
	return strings.Join([]string{FormatJSON, FormatBSON, FormatPNG, FormatTXT, FormatDOT, FormatSVG}, ", ")
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that a scene source is present.
func (o *Options) ValidateForLoad() error {
	if o.Scene == "" && o.SceneData == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scene or scene_data is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetResolveDefaults fills the viewport and theme from the scene, then from
// the package defaults.
func (o *Options) SetResolveDefaults(sc *scene.Scene) {
	if o.Width == 0 && sc != nil {
		o.Width = sc.Width
	}
	if o.Height == 0 && sc != nil {
		o.Height = sc.Height
	}
	if o.Theme == "" && sc != nil {
		o.Theme = sc.Theme
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForResolve applies resolve defaults and checks the ranges.
func (o *Options) ValidateForResolve(sc *scene.Scene) error {
	o.SetResolveDefaults(sc)
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viewport %dx%d", o.Width, o.Height)
	}
	if o.Ticks < 0 || o.Ticks > MaxTicks {
		return errors.New(errors.ErrCodeInvalidInput, "ticks must be between 0 and %d", MaxTicks)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Cols == 0 {
		o.Cols = max(o.Width/CellWidth, 1)
	}
	if o.Rows == 0 {
		o.Rows = max(o.Height/CellHeight, 1)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// NeedsTree reports whether any requested format is rendered from the
// element tree.
func (o *Options) NeedsTree() bool {
	for _, f := range o.Formats {
		if treeFormats[f] {
			return true
		}
	}
	return false
}

// SceneLabel names the scene source for logs and frames.
func (o *Options) SceneLabel() string {
	if o.Scene != "" {
		return o.Scene
	}
	return "<inline>"
}

// FrameKeyOpts returns cache key options for frame resolution.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Width:  o.Width,
		Height: o.Height,
		Theme:  o.Theme,
		Ticks:  o.Ticks,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatTXT:
		k.Cols, k.Rows = o.Cols, o.Rows
	case FormatDOT, FormatSVG:
		k.Detailed = o.Detailed
	}
	return k
}

func (o *Options) String() string {
	return fmt.Sprintf("%s %dx%d theme=%s ticks=%d", o.SceneLabel(), o.Width, o.Height, o.Theme, o.Ticks)
}
