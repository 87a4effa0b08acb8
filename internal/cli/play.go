package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/loop"
	"github.com/matzehuels/ember/pkg/pipeline"
	"github.com/matzehuels/ember/pkg/render"
	"github.com/matzehuels/ember/pkg/render/term"
	"github.com/matzehuels/ember/pkg/scene"
	"github.com/matzehuels/ember/pkg/widget"
)

// statusLines is the number of terminal rows below the grid.
const statusLines = 2

// playCommand creates the play command, which runs a scene interactively
// in the terminal.
func (c *CLI) playCommand() *cobra.Command {
	var opts pipeline.Options
	var fps float64

	cmd := &cobra.Command{
		Use:   "play [scene]",
		Short: "Run a scene interactively in the terminal",
		Long: `Run a scene at a fixed frame rate and draw every frame as a character grid.

Tab and shift+tab move focus, arrow keys navigate spatially, enter and space
activate the focused element and esc clears focus. The mouse hovers and
clicks. q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scene = args[0]
			if fps <= 0 {
				fps = c.Config.Play.FPS
			}
			return c.runPlay(cmd.Context(), opts, fps)
		},
	}

	cmd.Flags().IntVar(&opts.Width, "width", 0, "viewport width (default from scene, config or 640)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "viewport height (default from scene, config or 480)")
	cmd.Flags().StringVarP(&opts.Theme, "theme", "t", "", "built-in theme name or theme .toml file")
	cmd.Flags().Float64Var(&fps, "fps", 0, "ticks per second (default from config)")
	sceneCompletions(cmd)

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, opts pipeline.Options, fps float64) error {
	c.applyConfigDefaults(&opts)
	sc, _, err := pipeline.LoadScene(opts)
	if err != nil {
		return err
	}
	if err := opts.ValidateForResolve(sc); err != nil {
		return err
	}
	th, err := pipeline.LoadTheme(sc, opts)
	if err != nil {
		return err
	}

	// The grid owns the terminal; engine warnings surface in the status line.
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	e := widget.New(engine.WithTheme(th), engine.WithLogger(quiet))
	root, err := scene.Build(e, sc)
	if err != nil {
		return err
	}
	if err := e.SetRoot(root); err != nil {
		return err
	}
	e.SetViewport(geom.R(0, 0, opts.Width, opts.Height))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	d := loop.New(e,
		loop.WithFPS(fps),
		loop.WithScene(sc.Name),
		loop.WithLogger(quiet),
		loop.OnFrame(func(f *frame.Frame) { p.Send(frameMsg{f}) }),
	)
	p = tea.NewProgram(newPlayModel(d, th, e.Viewport()), tea.WithAltScreen(), tea.WithMouseAllMotion())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	_, err = p.Run()
	cancel()
	<-done
	if err != nil {
		return err
	}
	printSuccess("Played %d frames", d.Ticks())
	return nil
}

// frameMsg carries a published frame into the model.
type frameMsg struct{ f *frame.Frame }

// playModel is the bubbletea model for play. It forwards terminal input to
// the driver and draws the latest frame.
type playModel struct {
	driver  *loop.Driver
	palette term.Palette
	area    geom.Rect
	cols    int
	rows    int
	frame   *frame.Frame
}

func newPlayModel(d *loop.Driver, p term.Palette, area geom.Rect) playModel {
	return playModel{
		driver:  d,
		palette: p,
		area:    area,
		cols:    max(area.W/pipeline.CellWidth, 1),
		rows:    max(area.H/pipeline.CellHeight, 1),
	}
}

func (m playModel) Init() tea.Cmd {
	return nil
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = msg.f
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if code := event.ParseKey(msg.String()); code != event.KeyUnknown {
			m.driver.Post(event.Key{Code: code, Down: true}, event.Key{Code: code, Down: false})
		}
	case tea.MouseMsg:
		pos := m.toRoot(msg.X, msg.Y)
		switch msg.Action {
		case tea.MouseActionMotion:
			m.driver.Post(event.PointerMove{Pos: pos})
		case tea.MouseActionPress:
			if msg.Button == tea.MouseButtonLeft {
				m.driver.Post(event.PointerMove{Pos: pos}, event.PointerButton{Button: 1, Down: true, Pos: pos})
			}
		case tea.MouseActionRelease:
			m.driver.Post(event.PointerButton{Button: 1, Down: false, Pos: pos})
		}
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 1)
		m.rows = max(msg.Height-statusLines, 1)
	}
	return m, nil
}

// toRoot maps the center of a terminal cell to root coordinates.
func (m playModel) toRoot(col, row int) geom.Point {
	x := m.area.X + (2*col+1)*m.area.W/(2*m.cols)
	y := m.area.Y + (2*row+1)*m.area.H/(2*m.rows)
	return geom.Pt(x, y)
}

func (m playModel) View() string {
	if m.frame == nil {
		return StyleDim.Render("starting...")
	}
	var b strings.Builder
	b.WriteString(pipeline.RenderText(m.frame, m.palette, m.cols, m.rows, true))
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab/shift+tab focus  arrows navigate  enter activate  esc clear  q quit"))
	return b.String()
}

// status summarizes the frame: scene, sequence, focus and faults.
func (m playModel) status() string {
	parts := []string{
		StyleTitle.Render(m.frame.Scene),
		StyleDim.Render(fmt.Sprintf("frame %d", m.frame.Seq)),
	}
	for _, it := range m.frame.Items {
		if it.State == render.StateFocused {
			parts = append(parts, StyleHighlight.Render("focus "+it.Name))
			break
		}
	}
	if n := len(m.frame.Faults); n > 0 {
		ft := m.frame.Faults[n-1]
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d faults, last %s %s", n, ft.Code, ft.Element)))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
