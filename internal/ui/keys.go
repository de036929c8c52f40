package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding. Some keys mean different things per view: space
// toggles a favorite on Fonts and follow mode on Log.
type keyMap struct {
	Quit, Help, CycleTheme, Tab, Escape key.Binding
	ViewFonts, ViewLogs                 key.Binding

	ToggleFavorite, MoveDown, MoveUp, NextStyle key.Binding
	Reload, ClearCache                          key.Binding
	Search, ClearSearch, Confirm                key.Binding

	Up, Down, Top, Bottom    key.Binding
	PageUp, PageDown         key.Binding
	HalfPageUp, HalfPageDown key.Binding
	ToggleFollow, CycleLevel key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:       bind("e", "Quit", "ctrl+c", "e"),
		Help:       bind("h/?", "Toggle help", "h", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Tab:        bind("tab", "All/Favorites", "tab"),
		Escape:     bind("esc", "Back, clear filter", "esc"),
		ViewFonts:  bind("q", "Fonts view", "q"),
		ViewLogs:   bind("l", "Log view", "l"),

		ToggleFavorite: bind("f/space", "Toggle favorite", "f", " "),
		MoveDown:       bind("J", "Move favorite down", "J"),
		MoveUp:         bind("K", "Move favorite up", "K"),
		NextStyle:      bind("s", "Next style in family", "s"),
		Reload:         bind("r", "Reload from disk", "r"),
		ClearCache:     bind("C", "Clear font cache", "C"),
		Search:         bind("/", "Search or filter", "/"),
		ClearSearch:    bind("x", "Clear filter", "x"),
		Confirm:        bind("enter", "Confirm", "enter"),

		Up:           bind("k/up", "Move up", "k", "up"),
		Down:         bind("j/down", "Move down", "j", "down"),
		Top:          bind("g", "Go to top", "g", "home"),
		Bottom:       bind("G", "Go to bottom", "G", "end"),
		PageUp:       bind("pgup", "Page up", "pgup"),
		PageDown:     bind("pgdown", "Page down", "pgdown"),
		HalfPageUp:   bind("ctrl+u", "Half page up", "ctrl+u"),
		HalfPageDown: bind("ctrl+d", "Half page down", "ctrl+d"),

		ToggleFollow: bind("space", "Toggle follow mode", " "),
		CycleLevel:   bind("v", "Cycle minimum level", "v"),
	}
}

// helpSections groups the bindings for the help overlay.
func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{"Navigation", []key.Binding{k.Tab, k.ViewFonts, k.ViewLogs, k.Escape, k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp}},
		{"Fonts", []key.Binding{k.ToggleFavorite, k.MoveDown, k.MoveUp, k.NextStyle, k.Search, k.ClearSearch, k.Reload, k.ClearCache}},
		{"Log", []key.Binding{k.ToggleFollow, k.CycleLevel}},
		{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}
