package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ember/pkg/cache"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/scene"
)

const mini = `
name   = "mini"
width  = 160
height = 64

[root]
class = "vstack"
name  = "root"

[[root.children]]
class = "bar"
name  = "hp"
h     = 12
value = 3
max   = 4
`

const broken = `
[root]
class = "button"
name  = "ok"

[[root.children]]
class = "panel"
name  = "inner"
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"bson", false},
		{"png", false},
		{"txt", false},
		{"dot", false},
		{"svg", false},
		{"pdf", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format should fail with INVALID_FORMAT: %v", err)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing scene should fail")
	}

	opts = Options{SceneData: mini}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Inline scene should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger should default")
	}
}

func TestSetResolveDefaults(t *testing.T) {
	sc := &scene.Scene{Width: 100, Theme: "plain"}
	opts := Options{Height: 30}
	opts.SetResolveDefaults(sc)
	if opts.Width != 100 || opts.Height != 30 || opts.Theme != "plain" {
		t.Errorf("defaults from scene: %s", &opts)
	}

	opts = Options{}
	opts.SetResolveDefaults(nil)
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Theme != DefaultTheme {
		t.Errorf("package defaults: %s", &opts)
	}

	opts = Options{Ticks: -1}
	if err := opts.ValidateForResolve(nil); err == nil {
		t.Error("Negative ticks should fail")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{Width: 160, Height: 64}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats should be [json], got %v", opts.Formats)
	}
	if opts.Cols != 20 || opts.Rows != 4 {
		t.Errorf("grid = %dx%d, want 20x4", opts.Cols, opts.Rows)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		SceneData: mini,
		Formats:   []string{FormatJSON, FormatTXT, FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Frame.Scene != "mini" || len(result.Frame.Items) != 4 {
		t.Fatalf("frame = %q with %d items", result.Frame.Scene, len(result.Frame.Items))
	}
	fill, _ := result.Frame.Find("hp.fill")
	if fill.Rect != geom.R(0, 0, 120, 12) {
		t.Errorf("hp.fill = %v, want (0,0 120x12)", fill.Rect)
	}

	decoded, err := frame.Decode(result.Artifacts[FormatJSON], frame.FormatJSON)
	if err != nil || decoded.ID != result.Frame.ID {
		t.Errorf("json artifact does not decode to the frame: %v", err)
	}
	if got := strings.Count(string(result.Artifacts[FormatTXT]), "\n"); got != 4 {
		t.Errorf("txt artifact has %d rows, want 4", got)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), `"root/hp" -> "root/hp/hp.fill"`) {
		t.Errorf("dot artifact missing tree edge:\n%s", result.Artifacts[FormatDOT])
	}
	if result.Stats.Nodes != 2 || result.Stats.Faults != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{SceneData: mini, Formats: []string{FormatBSON, FormatPNG}}
	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.FrameHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.FrameHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if second.Frame.ID != first.Frame.ID || second.FrameHash != first.FrameHash {
		t.Error("cached frame differs from the first run")
	}

	// A tree format on a cached frame rebuilds the tree.
	opts.Formats = []string{FormatDOT}
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.FrameHit || len(third.Artifacts[FormatDOT]) == 0 {
		t.Errorf("third run: %+v, %d dot bytes", third.CacheInfo, len(third.Artifacts[FormatDOT]))
	}

	// Different options are different entries.
	opts.Width = 80
	fourth, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.FrameHit {
		t.Error("changed viewport should miss the frame cache")
	}
}

func TestExecuteRecordsFaults(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{SceneData: broken})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Frame.HasFault(errors.ErrCodeConfiguration) {
		t.Errorf("faults = %+v, want CONFIGURATION", result.Frame.Faults)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no scene", Options{}, errors.ErrCodeInvalidInput},
		{"missing file", Options{Scene: "does/not/exist.toml"}, errors.ErrCodeFileNotFound},
		{"bad scene", Options{SceneData: "[root]\nclass = \"slider\""}, errors.ErrCodeInvalidScene},
		{"bad theme", Options{SceneData: mini, Theme: "neon"}, errors.ErrCodeNotFound},
		{"bad format", Options{SceneData: mini, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	runner := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExampleScenes(t *testing.T) {
	paths, err := filepath.Glob("../../examples/scenes/*.toml")
	if err != nil || len(paths) == 0 {
		t.Fatalf("no example scenes: %v", err)
	}
	runner := NewRunner(nil, nil, nil)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			result, err := runner.Execute(context.Background(), Options{
				Scene:   path,
				Formats: []string{FormatTXT},
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(result.Frame.Items) < result.Stats.Nodes {
				t.Errorf("%d items for %d nodes", len(result.Frame.Items), result.Stats.Nodes)
			}
		})
	}
}
