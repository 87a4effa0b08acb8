package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/pipeline"
	"github.com/matzehuels/ember/pkg/theme"
	"github.com/matzehuels/ember/pkg/widget"
)

// =============================================================================
// Colors
// =============================================================================

// statePalette holds the render state colors of the default theme, so the
// CLI highlights focus and activity the way `ember play` draws them.
var statePalette = loadStatePalette()

func loadStatePalette() *theme.Theme {
	th, err := theme.Builtin(theme.DefaultName, widget.Registry())
	if err != nil {
		return nil // Color falls back to grey
	}
	return th
}

// stateColor is the palette color of a render state name.
func stateColor(state string) lipgloss.Color {
	return lipgloss.Color(statePalette.Color(state))
}

var (
	colorAccent = stateColor("focused")
	colorOK     = stateColor("active")
	colorLink   = stateColor("pressed")
	colorWarn   = lipgloss.Color("221")
	colorFail   = lipgloss.Color("174")
	colorText   = lipgloss.Color("254")
	colorSubtle = lipgloss.Color("246")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleHeader    = lipgloss.NewStyle().Bold(true).Foreground(colorSubtle)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleKey     = lipgloss.NewStyle().Foreground(colorSubtle).Width(12)
)

// =============================================================================
// Status lines
// =============================================================================

type statusKind int

const (
	statusOK statusKind = iota
	statusFail
	statusWarn
	statusInfo
)

var statusMarks = [...]struct {
	mark  string
	style lipgloss.Style
	body  lipgloss.Style
}{
	statusOK:   {"✓", lipgloss.NewStyle().Foreground(colorOK), lipgloss.NewStyle()},
	statusFail: {"✗", lipgloss.NewStyle().Foreground(colorFail), lipgloss.NewStyle()},
	statusWarn: {"!", lipgloss.NewStyle().Foreground(colorWarn), StyleWarning},
	statusInfo: {"›", lipgloss.NewStyle().Foreground(colorSubtle), lipgloss.NewStyle()},
}

// statusLine formats one marked status message.
func statusLine(kind statusKind, format string, args ...any) string {
	m := statusMarks[kind]
	return m.style.Render(m.mark) + " " + m.body.Render(fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { fmt.Println(statusLine(statusOK, format, args...)) }
func printError(format string, args ...any)   { fmt.Println(statusLine(statusFail, format, args...)) }
func printWarning(format string, args ...any) { fmt.Println(statusLine(statusWarn, format, args...)) }
func printInfo(format string, args ...any)    { fmt.Println(statusLine(statusInfo, format, args...)) }

// printFaults reports frame faults. Configuration and layout failures are
// errors; cascade cycles and clamped render items are warnings.
func printFaults(faults []frame.Fault) {
	for _, ft := range faults {
		kind := statusWarn
		switch errors.Code(ft.Code) {
		case errors.ErrCodeConfiguration, errors.ErrCodeLayoutResolution:
			kind = statusFail
		}
		fmt.Println(statusLine(kind, "%s %s: %s", ft.Code, ft.Element, ft.Message))
	}
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Summaries
// =============================================================================

// statsLine summarizes a frame on one line: element and item counts, any
// faults, and whether it came from the cache.
func statsLine(stats pipeline.Stats, cached bool) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d elements", stats.Nodes)),
		StyleDim.Render(fmt.Sprintf("%d items", stats.Items)),
	}
	if stats.Faults > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d faults", stats.Faults)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorOK).Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorSubtle).Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(stats pipeline.Stats, cached bool) { fmt.Println(statsLine(stats, cached)) }

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
