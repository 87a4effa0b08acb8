package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/loop"
	"github.com/matzehuels/ember/pkg/render"
	"github.com/matzehuels/ember/pkg/theme"
	"github.com/matzehuels/ember/pkg/trait"
	"github.com/matzehuels/ember/pkg/widget"
)

// menu builds two buttons side by side in a 160x16 viewport, which maps to
// a 20x1 cell grid.
func menu(t *testing.T) (*loop.Driver, playModel) {
	t.Helper()
	e := widget.New()
	root, _ := e.Create(widget.HStack, "root", nil)
	ok, _ := e.Create(widget.Button, "ok", trait.Values{trait.W: 20, trait.H: 16})
	cancel, _ := e.Create(widget.Button, "cancel", trait.Values{trait.W: 20, trait.H: 16})
	_ = e.Append(root, ok)
	_ = e.Append(root, cancel)
	area := geom.R(0, 0, 160, 16)
	if _, err := e.Resolve(root, area); err != nil {
		t.Fatal(err)
	}
	th, err := theme.Builtin(theme.DefaultName, widget.Registry())
	if err != nil {
		t.Fatal(err)
	}
	d := loop.New(e, loop.WithScene("menu"))
	return d, newPlayModel(d, th, area)
}

func update(t *testing.T, m playModel, msg tea.Msg) playModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(playModel)
}

func stateOf(t *testing.T, d *loop.Driver, name string) render.State {
	t.Helper()
	it, ok := d.Frame().Find(name)
	if !ok {
		t.Fatalf("no item %q in frame", name)
	}
	return it.State
}

func TestPlayModelGrid(t *testing.T) {
	_, m := menu(t)
	if m.cols != 20 || m.rows != 1 {
		t.Fatalf("grid = %dx%d, want 20x1", m.cols, m.rows)
	}
	if got := m.toRoot(1, 0); got != geom.Pt(12, 8) {
		t.Errorf("toRoot(1, 0) = %v, want (12,8)", got)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})
	if m.cols != 40 || m.rows != 10 {
		t.Errorf("resized grid = %dx%d, want 40x10", m.cols, m.rows)
	}
}

func TestPlayModelKeys(t *testing.T) {
	d, m := menu(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	d.Step()
	if got := stateOf(t, d, "ok"); got != render.StateFocused {
		t.Errorf("after tab ok = %s, want focused", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	d.Step()
	if got := stateOf(t, d, "cancel"); got != render.StateFocused {
		t.Errorf("after second tab cancel = %s, want focused", got)
	}

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	d.Step()
	if got := stateOf(t, d, "cancel"); got != render.StateDefault {
		t.Errorf("after esc cancel = %s, want default", got)
	}
}

func TestPlayModelQuit(t *testing.T) {
	_, m := menu(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlayModelMouse(t *testing.T) {
	d, m := menu(t)

	// Cell 1 lands inside ok, cell 4 inside cancel.
	m = update(t, m, tea.MouseMsg{X: 4, Y: 0, Action: tea.MouseActionMotion})
	d.Step()
	if got := stateOf(t, d, "cancel"); got != render.StateHovered {
		t.Errorf("cancel = %s, want hovered", got)
	}

	update(t, m, tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	d.Step()
	if got := stateOf(t, d, "ok"); got != render.StatePressed {
		t.Errorf("ok = %s, want pressed", got)
	}
}

func TestPlayModelView(t *testing.T) {
	d, m := menu(t)
	if got := m.View(); !strings.Contains(got, "starting") {
		t.Errorf("View() before first frame = %q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, frameMsg{d.Step()})
	view := m.View()
	for _, s := range []string{"menu", "frame", "focus ok", "q quit"} {
		if !strings.Contains(view, s) {
			t.Errorf("View() missing %q:\n%s", s, view)
		}
	}
}
