package console

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Build       key.Binding
	Test        key.Binding
	Schemes     key.Binding
	SetDefault  key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	CycleFilter key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

var Keys = KeyMap{
	Build: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "build"),
	),
	Test: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "test"),
	),
	Schemes: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "schemes"),
	),
	SetDefault: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "set default"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "prev field"),
	),
	CycleFilter: key.NewBinding(
		key.WithKeys("left", "right", " "),
		key.WithHelp("←/→", "filter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
