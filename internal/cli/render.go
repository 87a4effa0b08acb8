package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ember/pkg/pipeline"
)

// renderFlags holds the flags shared by render and graph.
type renderFlags struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	noCache bool   // bypass the frame and artifact cache
}

// renderCommand creates the render command for producing frame artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Resolve a scene and write its frame as png, txt, json or bson",
		Long: `Resolve a scene and write the captured frame in one or more formats.

Output files are named after the scene (or --output) with one extension per
format. Frames and artifacts are cached; --refresh recomputes them.`,
		Example: `  ember render examples/scenes/hud.toml
  ember render examples/scenes/menu.toml -f png,txt,json -o out/menu
  ember render examples/scenes/hud.toml --width 320 --ticks 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scene = args[0]
			opts.Formats = parseFormats(flags.formats, c.Config.Render.Formats)
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): png, txt, json, bson, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	addResolveFlags(cmd, &opts)
	cmd.Flags().IntVar(&opts.Cols, "cols", 0, "txt grid columns (default width/8)")
	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "txt grid rows (default height/16)")
	sceneCompletions(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(allFormats))

	return cmd
}

// graphCommand creates the graph command for element tree diagrams.
func (c *CLI) graphCommand() *cobra.Command {
	var flags renderFlags
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "graph [scene]",
		Short: "Draw the element tree and its watch links as dot or svg",
		Long: `Draw the resolved element tree with Graphviz. Tree edges are solid;
watch links run from the watched element to its dependent and are dashed.`,
		Example: `  ember graph examples/scenes/hud.toml
  ember graph examples/scenes/hud.toml -f dot,svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scene = args[0]
			opts.Formats = parseFormats(flags.formats, []string{pipeline.FormatSVG})
			for _, f := range opts.Formats {
				if f != pipeline.FormatDOT && f != pipeline.FormatSVG {
					return fmt.Errorf("graph writes dot or svg, not %s", f)
				}
			}
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with class, bounds and generation")
	addResolveFlags(cmd, &opts)
	sceneCompletions(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats([]string{pipeline.FormatSVG, pipeline.FormatDOT}))

	return cmd
}

// addResolveFlags registers the viewport, theme and tick flags.
func addResolveFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().IntVar(&opts.Width, "width", 0, "viewport width (default from scene, config or 640)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "viewport height (default from scene, config or 480)")
	cmd.Flags().StringVarP(&opts.Theme, "theme", "t", "", "built-in theme name or theme .toml file")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "extra ticks to run before capturing the frame")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached frames and artifacts")
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags renderFlags) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	c.applyConfigDefaults(&opts)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Loading %s...", opts.Scene))
	spinner.Start()
	var result *pipeline.Result
	withStages(spinner, func() { result, err = runner.Execute(ctx, opts) })
	spinner.Stop()
	if err != nil {
		return err
	}

	base := basePath(flags.output, opts.Scene)
	var paths []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && flags.output != "" && filepath.Ext(flags.output) != "" {
			path = flags.output
		}
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	cached := result.CacheInfo.FrameHit && result.CacheInfo.RenderHit
	printSuccess("Rendered %s", StyleHighlight.Render(result.Frame.Scene))
	printStats(result.Stats, cached)
	for _, p := range paths {
		printFile(p)
	}
	printFaults(result.Frame.Faults)
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(paths)), "scene", result.Frame.Scene, "cached", cached)
	if opts.Scene != "" {
		printNewline()
		printNextStep("Inspect the layout", "ember resolve "+opts.Scene)
	}
	return nil
}

// writeFile creates parent directories and writes data to path.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
