package tui

// Keybinding constants
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyPane1    = "1"
	KeyPane2    = "2"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyLeft     = "left"
	KeyRight    = "right"
	KeyJ        = "j"
	KeyK        = "k"
	KeyH        = "h"
	KeyL        = "l"
	KeyToggle   = " "
	KeyEdit     = "enter"
	KeyEsc      = "esc"
	KeySettings = "s"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView(running bool) string {
	toggle := "space: start"
	if running {
		toggle = "space: stop"
	}
	return StyleHelp.Render(toggle + " | enter: edit task | h/j/k/l: move | Tab: cycle focus | s: settings | q: quit")
}
