package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	WordNext  key.Binding
	WordPrev  key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		WordNext:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "next word")),
		WordPrev:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous word")),
		LineStart: key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "line start")),
		LineEnd:   key.NewBinding(key.WithKeys("end", "$"), key.WithHelp("$", "line end")),
		Top:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-resolve")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.WordNext, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.WordNext, k.WordPrev, k.LineStart, k.LineEnd},
		{k.Top, k.Bottom, k.Refresh},
		{k.Help, k.Quit},
	}
}
