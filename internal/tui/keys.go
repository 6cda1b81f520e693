package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Next, Prev            key.Binding
	Complete, Important   key.Binding
	Delete, Refresh       key.Binding
	ShowDone, Help, Quit  key.Binding
	Confirm, Cancel       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "right")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next quadrant")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous quadrant")),
		Complete:  key.NewBinding(key.WithKeys("c", " "), key.WithHelp("c", "done/reopen")),
		Important: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "toggle important")),
		Delete:    key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reclassify")),
		ShowDone:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "show/hide done")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y")),
		Cancel:    key.NewBinding(key.WithKeys("n", "N", "esc", "q")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Important, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Next, k.Prev},
		{k.Complete, k.Important, k.Delete},
		{k.Refresh, k.ShowDone, k.Help, k.Quit},
	}
}
