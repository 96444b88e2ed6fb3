package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	NextMismatch key.Binding
	PrevMismatch key.Binding
	Top          key.Binding
	Toggle       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	NextMismatch: key.NewBinding(
		key.WithKeys("n", "tab"),
		key.WithHelp("n/tab", "next mismatch"),
	),
	PrevMismatch: key.NewBinding(
		key.WithKeys("N", "shift+tab"),
		key.WithHelp("N/S-tab", "prev mismatch"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "unified/split"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
