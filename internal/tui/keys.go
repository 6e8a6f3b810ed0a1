package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application key bindings. List movement lives in
// components.TopicListKeyMap.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Escape    key.Binding
	Refresh   key.Binding
	LoadMore  key.Binding
	Open      key.Binding
	OpenUser  key.Binding
	OpenNode  key.Binding
	Filter    key.Binding
	CycleType key.Binding
	PickNode  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "load more"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open topic"),
		),
		OpenUser: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "open author"),
		),
		OpenNode: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open node"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "list type"),
		),
		PickNode: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "node"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
