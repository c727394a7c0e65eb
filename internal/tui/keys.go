package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Clear   key.Binding
	Digit   key.Binding
	Decimal key.Binding
	Units   key.Binding
	Lock    key.Binding
	Speed   key.Binding
	Variant key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/k", "previous field")),
		Next:    key.NewBinding(key.WithKeys("down", "j", "tab", "enter"), key.WithHelp("↓/j", "next field")),
		Clear:   key.NewBinding(key.WithKeys("backspace", "delete", "c", "C"), key.WithHelp("c", "clear (CA clears all)")),
		Digit:   key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "type")),
		Decimal: key.NewBinding(key.WithKeys(".", ","), key.WithHelp(".", "decimal point")),
		Units:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "metric/imperial")),
		Lock:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lock rpm/feed")),
		Speed:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "speed mode")),
		Variant: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "drilling/milling")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Digit, k.Decimal, k.Clear},
		{k.Units, k.Lock, k.Speed, k.Variant},
		{k.Help, k.Quit},
	}
}
