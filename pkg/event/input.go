package event

import "github.com/matzehuels/ember/pkg/geom"

// Input is a raw input record from the input collaborator. The engine queues
// inputs and maps them to semantic events at the start of the next tick.
type Input interface {
	isInput()
}

// PointerMove reports the pointer position in root coordinates.
type PointerMove struct {
	Pos geom.Point
}

// PointerButton reports a button transition at a position.
type PointerButton struct {
	Button int // 1 = primary
	Down   bool
	Pos    geom.Point
}

// Key reports a key transition.
type Key struct {
	Code KeyCode
	Down bool
}

// ControllerButton reports a game controller button transition.
type ControllerButton struct {
	Button int // 0 = primary (activate)
	Down   bool
}

func (PointerMove) isInput()      {}
func (PointerButton) isInput()    {}
func (Key) isInput()              {}
func (ControllerButton) isInput() {}

// KeyCode identifies the keys the engine maps to semantic events.
type KeyCode uint8

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeySpace
	KeyTab
	KeyBackTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
)

// ParseKey maps common key names ("enter", "tab", "shift+tab", "left", ...)
// to key codes.
func ParseKey(s string) KeyCode {
	switch s {
	case "enter", "return":
		return KeyEnter
	case "space", " ":
		return KeySpace
	case "tab":
		return KeyTab
	case "shift+tab", "backtab":
		return KeyBackTab
	case "left", "h":
		return KeyLeft
	case "right", "l":
		return KeyRight
	case "up", "k":
		return KeyUp
	case "down", "j":
		return KeyDown
	case "esc", "escape":
		return KeyEscape
	}
	return KeyUnknown
}
