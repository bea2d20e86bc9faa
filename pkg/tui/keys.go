package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Locate    key.Binding
	Category  key.Binding
	Up        key.Binding
	Down      key.Binding
	Focus     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Emergency key.Binding
	Close     key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Locate, k.Category, k.Up, k.Down, k.Focus, k.ZoomIn, k.ZoomOut, k.Emergency, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Close}}
}

var keys = keyMap{
	Locate: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "share location"),
	),
	Category: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-5", "search"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Focus: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Emergency: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "emergency"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
