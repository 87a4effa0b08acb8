package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/pipeline"
)

// resolveCommand creates the resolve command, which prints the settled
// layout of a scene as a table.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts pipeline.Options
	var traits []string

	cmd := &cobra.Command{
		Use:   "resolve [scene]",
		Short: "Settle a scene's layout and print element bounds",
		Long: `Settle a scene's layout and print every element with its class, absolute
bounds and render state.

Each --trait adds a column with the effective value of that trait and where
it came from: a local override, a cascade entry (with the publishing
container), the theme or the class default.`,
		Example: `  ember resolve examples/scenes/hud.toml
  ember resolve examples/scenes/menu.toml --trait w --trait spacing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scene = args[0]
			return c.runResolve(cmd.Context(), opts, traits)
		},
	}

	cmd.Flags().IntVar(&opts.Width, "width", 0, "viewport width (default from scene, config or 640)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "viewport height (default from scene, config or 480)")
	cmd.Flags().StringVarP(&opts.Theme, "theme", "t", "", "built-in theme name or theme .toml file")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "extra ticks to run before printing")
	cmd.Flags().StringArrayVar(&traits, "trait", nil, "show the effective value of a trait (repeatable)")
	sceneCompletions(cmd)

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, opts pipeline.Options, traits []string) error {
	c.applyConfigDefaults(&opts)
	opts.Logger = loggerFromContext(ctx)

	sc, _, err := pipeline.LoadScene(opts)
	if err != nil {
		return err
	}
	res, err := pipeline.Resolve(sc, opts)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(res.Frame.Scene) + " " + StyleDim.Render(fmt.Sprintf("%dx%d", res.Frame.Width, res.Frame.Height)))
	fmt.Println(layoutTable(res.Engine, traits).Render())
	printFaults(res.Frame.Faults)
	printKeyValue("elements", StyleNumber.Render(fmt.Sprint(res.Engine.Len())))
	printKeyValue("passes", StyleNumber.Render(fmt.Sprint(res.Engine.Stats().Passes)))
	return nil
}

// layoutRows returns one row per attached element in tree order: the
// indented name, class, bounds and state, then one cell per trait.
func layoutRows(e *engine.Engine, traits []string) [][]string {
	var rows [][]string
	e.Walk(func(h engine.Handle, depth int) bool {
		row := []string{
			strings.Repeat("  ", depth) + e.Name(h),
			e.Class(h).Name,
			e.Bounds(h).String(),
			string(e.State(h)),
		}
		for _, name := range traits {
			row = append(row, explain(e, h, name))
		}
		rows = append(rows, row)
		return true
	})
	return rows
}

// explain formats an effective value with its origin.
func explain(e *engine.Engine, h engine.Handle, name string) string {
	v, prov := e.Explain(h, name)
	if prov.Origin == engine.OriginNone {
		return "-"
	}
	s := fmt.Sprintf("%v %s", v, prov.Origin)
	if prov.Origin == engine.OriginCascade {
		s += " " + e.Name(prov.From)
	}
	return s
}

func layoutTable(e *engine.Engine, traits []string) *table.Table {
	headers := append([]string{"Element", "Class", "Bounds", "State"}, traits...)
	rows := layoutRows(e, traits)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case col == 0:
				return base.Foreground(colorText)
			case col == 3 && row < len(rows) && rows[row][3] != "default":
				return base.Foreground(stateColor(rows[row][3]))
			case col >= 4:
				return base.Foreground(colorSubtle)
			}
			return base.Foreground(colorMuted)
		})
}
