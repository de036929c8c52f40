package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fontshelf/internal/state"
)

// Theme is a named palette. Colors are hex strings.
type Theme struct {
	Name string

	Background string // behind overlays
	Surface    string // header and command bar
	SurfaceAlt string // unfocused panes
	FocusBg    string // focused pane

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text     string
	Muted    string
	Faint    string
	Accent   string
	Success  string
	Warning  string
	Danger   string
	Info     string
	Favorite string // stars and ranks

	Phases map[state.Phase]string // header chip per lifecycle phase
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text         lipgloss.Style
	MutedText    lipgloss.Style
	FaintText    lipgloss.Style
	AccentText   lipgloss.Style
	SuccessText  lipgloss.Style
	WarningText  lipgloss.Style
	DangerText   lipgloss.Style
	InfoText     lipgloss.Style
	FavoriteText lipgloss.Style

	Header lipgloss.Style
	Logo   lipgloss.Style

	phases     map[state.Phase]string
	background string
	muted      string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the theme's styles.
func (t Theme) Styles() Styles {
	return Styles{
		Text:         fg(t.Text),
		MutedText:    fg(t.Muted),
		FaintText:    fg(t.Faint),
		AccentText:   fg(t.Accent),
		SuccessText:  fg(t.Success).Bold(true),
		WarningText:  fg(t.Warning),
		DangerText:   fg(t.Danger).Bold(true),
		InfoText:     fg(t.Info),
		FavoriteText: fg(t.Favorite),

		Header: fg(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Logo:   fg(t.Favorite).Bold(true),

		phases:     t.Phases,
		background: t.Background,
		muted:      t.Muted,
	}
}

func (s *Styles) all() []*lipgloss.Style {
	return []*lipgloss.Style{
		&s.Text, &s.MutedText, &s.FaintText, &s.AccentText, &s.SuccessText,
		&s.WarningText, &s.DangerText, &s.InfoText, &s.FavoriteText,
		&s.Header, &s.Logo,
	}
}

// WithBackground returns a copy where every style paints bgColor, so text
// rendered inside a colored pane does not punch holes through it.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range out.all() {
		*st = st.Background(bg)
	}
	return out
}

// PhaseColor returns the chip color for phase, muted when the theme has none.
func (s Styles) PhaseColor(phase state.Phase) string {
	if color := s.phases[phase]; color != "" {
		return color
	}
	return s.muted
}

// PhaseStyle returns the header chip style for phase.
func (s Styles) PhaseStyle(phase state.Phase) lipgloss.Style {
	return fg(s.background).
		Background(lipgloss.Color(s.PhaseColor(phase))).
		Bold(true).
		Padding(0, 1)
}

// themes lists every palette in cycling order; the first is the default.
var themes = []Theme{
	{
		// https://github.com/EdenEast/nightfox.nvim
		Name:       "Nightfox",
		Background: "#131a24", Surface: "#192330", SurfaceAlt: "#212e3f", FocusBg: "#29394f",
		SelectionBg: "#2b3b51", SelectionText: "#cdcecf",
		Border: "#39506d", BorderFocus: "#719cd6",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b", Accent: "#719cd6",
		Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d", Info: "#63cdcf",
		Favorite: "#f4a261",
		Phases: map[state.Phase]string{
			state.PhaseIdle:      "#738091",
			state.PhaseLoading:   "#63cdcf",
			state.PhasePopulated: "#81b29a",
			state.PhaseError:     "#c94f6d",
		},
	},
	{
		// https://github.com/rebelot/kanagawa.nvim
		Name:       "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", SurfaceAlt: "#2A2A37", FocusBg: "#2A2A37",
		SelectionBg: "#2D4F67", SelectionText: "#DCD7BA",
		Border: "#54546D", BorderFocus: "#7E9CD8",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169", Accent: "#7E9CD8",
		Success: "#98BB6C", Warning: "#E6C384", Danger: "#E46876", Info: "#7FB4CA",
		Favorite: "#FFA066",
		Phases: map[state.Phase]string{
			state.PhaseIdle:      "#727169",
			state.PhaseLoading:   "#7FB4CA",
			state.PhasePopulated: "#98BB6C",
			state.PhaseError:     "#E46876",
		},
	},
	{
		// Tailwind slate and sky
		Name:       "Slate",
		Background: "#020617", Surface: "#0f172a", SurfaceAlt: "#1e293b", FocusBg: "#283548",
		SelectionBg: "#0284c7", SelectionText: "#f8fafc",
		Border: "#334155", BorderFocus: "#38bdf8",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b", Accent: "#38bdf8",
		Success: "#22c55e", Warning: "#f59e0b", Danger: "#ef4444", Info: "#06b6d4",
		Favorite: "#fb923c",
		Phases: map[state.Phase]string{
			state.PhaseIdle:      "#64748b",
			state.PhaseLoading:   "#0ea5e9",
			state.PhasePopulated: "#16a34a",
			state.PhaseError:     "#dc2626",
		},
	},
}

// GetTheme returns the named theme, or the default for unknown names.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames returns the theme names in cycling order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
