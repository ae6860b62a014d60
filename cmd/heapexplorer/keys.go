package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the explorer's own shortcuts. Cursor movement is handled by
// the chunk table's key map.
type KeyMap struct {
	Detail   key.Binding
	Esc      key.Binding
	FreeOnly key.Binding
	Copy     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show payload"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		FreeOnly: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "free chunks only"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy payload offset"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload file"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// bindings lists the bindings in the order the help screen shows them.
func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Detail, k.Esc, k.FreeOnly, k.Copy, k.Refresh, k.Help, k.Quit}
}
