package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the board view.
type KeyMap struct {
	// Focus movement between cards.
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Select key.Binding // Toggle the focused card in the selection.
	Open   key.Binding // Show the focused card's details.
	Grab   key.Binding // Pick up the selection for a keyboard move.
	Drop   key.Binding // Drop a keyboard move on its target.
	Cancel key.Binding // Abandon a keyboard move or close details.

	// Reorder the focused card's column.
	ColumnLeft  key.Binding
	ColumnRight key.Binding

	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in binding set: vim-style movement alongside
// the arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "right"),
	),
	Select: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "select"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "details"),
	),
	Grab: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move"),
	),
	Drop: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "drop"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	ColumnLeft: key.NewBinding(
		key.WithKeys("H", "shift+left"),
		key.WithHelp("H", "column left"),
	),
	ColumnRight: key.NewBinding(
		key.WithKeys("L", "shift+right"),
		key.WithHelp("L", "column right"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// shortHelp lists the bindings shown in the footer.
func (k KeyMap) shortHelp(grabbing bool) []key.Binding {
	if grabbing {
		return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Drop, k.Cancel}
	}
	return []key.Binding{k.Select, k.Grab, k.Open, k.ColumnLeft, k.ColumnRight, k.Refresh, k.Quit}
}
