package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/fontshelf/internal/state"
)

// renderHeader renders the status bar: phase, counts, freshness and health.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	snap := m.snapshot

	var parts []string

	parts = append(parts, bg.Render("fontshelf", styles.Logo))

	phase := snap.Phase
	if snap.Loading {
		phase = state.PhaseLoading
	}
	parts = append(parts, styles.PhaseStyle(phase).Render(strings.ToUpper(phase.String())))

	facesLabel, favsLabel := "Faces:", "Favorites:"
	if compact {
		facesLabel, favsLabel = "F:", "★:"
	}
	favorites := 0
	for _, r := range m.records {
		if r.Favorite {
			favorites++
		}
	}
	favStyle := styles.MutedText
	if favorites > 0 {
		favStyle = styles.FavoriteText
	}
	parts = append(parts,
		bg.Field(facesLabel, fmt.Sprintf("%d", len(m.records)), styles.MutedText, styles.Text)+
			bg.Spaces(2)+bg.Render("•", styles.FaintText)+bg.Spaces(2)+
			bg.Field(favsLabel, fmt.Sprintf("%d", favorites), styles.MutedText, favStyle),
	)

	if perm := snap.Permission; perm != "" && perm != "granted" && !compact {
		parts = append(parts, bg.Field("perm", perm, styles.FaintText, styles.WarningText))
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if warning := m.formatHealthWarning(compact, styles, bg); warning != "" {
		parts = append(parts, warning)
	}

	if snap.Phase == state.PhaseError && snap.Error != "" {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Field("ERROR", truncate(snap.Error, maxErr), styles.DangerText.Bold(true), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp shows when the list last changed.
func (m Model) formatTimestamp() string {
	if m.lastChange.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", m.lastChange.Format("15:04:05"), humanizeDuration(time.Since(m.lastChange)))
}

// formatHealthWarning reports storage trouble: pulls failing or writes not
// reaching the database.
func (m Model) formatHealthWarning(compact bool, styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		label := "STORAGE OFFLINE"
		if compact {
			label = "OFFLINE"
		}
		return bg.Render(label, styles.DangerText.Bold(true))
	case snap.LastError != nil:
		return bg.Render("sync retrying", styles.WarningText)
	}
	if m.store != nil {
		if n := m.store.PersistenceFailures(); n > 0 {
			if compact {
				return bg.Render("unsaved", styles.WarningText)
			}
			return bg.Render(fmt.Sprintf("not saved (%d write errors)", n), styles.WarningText)
		}
	}
	return ""
}

// renderCommandBar renders the key hints for the current view, or the search
// box while it is open.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searchActive {
		return styles.Header.Width(m.width).Render(m.searchInput.View())
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"v", "≥" + levelName(m.logState.minLevel)},
			{"j/k", "Scroll"},
			{"q", "Fonts"},
			{"?", "More"},
		}
	default:
		tabLabel := "All"
		if m.tab == TabFavorites {
			tabLabel = "Favorites"
		}
		commands = []cmd{
			{"Tab", tabLabel},
			{"f", "Favorite"},
		}
		if m.tab == TabFavorites {
			commands = append(commands, cmd{"J/K", "Reorder"})
		}
		commands = append(commands,
			cmd{"/", "Search"},
			cmd{"r", "Reload"},
			cmd{"C", "Clear"},
			cmd{"l", "Log"},
			cmd{"?", "More"},
		)
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+3)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewFonts && m.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.query, 24), styles.AccentText))
	}

	if m.statusText != "" {
		style := styles.SuccessText
		if m.statusError {
			style = styles.DangerText
		}
		segments = append(segments, bg.Render(truncate(m.statusText, 60), style))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
