package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the reader
type KeyMap struct {
	// Paging
	Next        key.Binding
	Prev        key.Binding
	First       key.Binding
	Last        key.Binding
	NextChapter key.Binding
	PrevChapter key.Binding

	// Actions
	Toggle       key.Binding
	Chapters     key.Binding
	Bookmark     key.Binding
	NextBookmark key.Binding
	Images       key.Binding
	Quit         key.Binding
	Help         key.Binding
	Escape       key.Binding

	// Palette
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Paging
		Next: key.NewBinding(
			key.WithKeys("l", "right", " ", "pgdown"),
			key.WithHelp("l/→", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "backspace", "pgup"),
			key.WithHelp("h/←", "previous page"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		NextChapter: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next chapter"),
		),
		PrevChapter: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous chapter"),
		),

		// Actions
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/close book"),
		),
		Chapters: key.NewBinding(
			key.WithKeys(":", "c"),
			key.WithHelp(":", "chapters"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle bookmark"),
		),
		NextBookmark: key.NewBinding(
			key.WithKeys("'"),
			key.WithHelp("'", "next bookmark"),
		),
		Images: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open images"),
		),
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
			key.WithHelp("esc", "cancel"),
		),

		// Palette
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "go to chapter"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Chapters, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last, k.NextChapter, k.PrevChapter},
		{k.Toggle, k.Chapters, k.Bookmark, k.NextBookmark, k.Images},
		{k.Help, k.Escape, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
