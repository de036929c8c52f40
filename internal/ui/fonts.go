package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fontshelf/internal/font"
	"github.com/five82/fontshelf/internal/state"
)

// visibleRecords returns the faces of the current tab in display order. The
// All tab walks family groups; the Favorites tab is the ranked flat list.
func (m Model) visibleRecords() []font.Record {
	if m.tab == TabFavorites {
		return m.projection.FavoritesFlat
	}
	var out []font.Record
	for _, g := range m.projection.Families {
		out = append(out, g.Styles...)
	}
	return out
}

// clampSelection keeps the selection on the same face across rebuilds and
// falls back to clamping the row index.
func (m *Model) clampSelection() {
	rows := m.visibleRecords()
	if len(rows) == 0 {
		m.selectedRow = 0
		m.selectedID = ""
		return
	}
	if m.selectedID != "" {
		for i, r := range rows {
			if r.ID == m.selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectedRow = max(0, min(m.selectedRow, len(rows)-1))
	m.selectedID = rows[m.selectedRow].ID
}

// familyPosition returns how many styles r's family has in the current
// projection and r's index among them.
func (m Model) familyPosition(r font.Record) (count, index int) {
	for _, g := range m.projection.Families {
		if g.Family() != r.Family {
			continue
		}
		for i, s := range g.Styles {
			if s.ID == r.ID {
				index = i
			}
		}
		return len(g.Styles), index
	}
	return 1, 0
}

// nextStyle moves the selection to the next visible style of the selected
// face's family, wrapping around.
func (m *Model) nextStyle() {
	rows := m.visibleRecords()
	if len(rows) == 0 {
		return
	}
	family := rows[m.selectedRow].Family
	for step := 1; step < len(rows); step++ {
		i := (m.selectedRow + step) % len(rows)
		if rows[i].Family == family {
			m.selectedRow = i
			m.syncSelectedID()
			return
		}
	}
}

func (m *Model) syncSelectedID() {
	rows := m.visibleRecords()
	if m.selectedRow >= 0 && m.selectedRow < len(rows) {
		m.selectedID = rows[m.selectedRow].ID
	}
}

func (m Model) selectedRecord() (font.Record, bool) {
	rows := m.visibleRecords()
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return font.Record{}, false
	}
	return rows[m.selectedRow], true
}

// listHeight is the number of rows inside the list box.
func (m Model) listHeight() int {
	return m.height - 4 // header, cmdbar, box borders
}

// renderFonts renders the list and detail panes side by side.
func (m Model) renderFonts() string {
	contentHeight := m.height - 2 // header + cmdbar

	if m.projection.Empty() {
		return m.renderEmptyState(contentHeight)
	}

	var listWidth int
	if m.width >= LayoutExtraWideWidth {
		listWidth = m.width * 45 / 100
	} else {
		listWidth = m.width * 55 / 100
	}
	detailWidth := m.width - listWidth

	listContent := m.renderFontList(listWidth-2, m.listHeight(), m.theme.FocusBg)
	listPane := m.renderTitledBox(m.listTitle(), listContent, listWidth, contentHeight, true)

	var detailContent string
	if r, ok := m.selectedRecord(); ok {
		detailContent = m.renderDetailContent(r, detailWidth-2, m.theme.SurfaceAlt)
	} else {
		detailContent = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Render("Select a face")
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, contentHeight, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// renderEmptyState explains why nothing is listed and what to press.
func (m Model) renderEmptyState(height int) string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var lines []string
	switch {
	case snap.Loading:
		lines = append(lines, styles.InfoText.Render("Enumerating local fonts..."))
	case snap.Phase == state.PhaseError:
		lines = append(lines, styles.DangerText.Render(snap.Error))
		switch snap.Kind {
		case state.ErrorUnsupported:
			lines = append(lines, styles.MutedText.Render("No font directories exist here. Set font_dirs in the config file."))
		case state.ErrorDenied:
			lines = append(lines, styles.MutedText.Render("The font directories are not readable. Fix their permissions, then press r."))
		default:
			lines = append(lines, styles.MutedText.Render("Press r to try again."))
		}
	case snap.Phase == state.PhasePopulated:
		lines = append(lines, styles.MutedText.Render("No fonts were found in the font directories."))
	default:
		lines = append(lines, styles.MutedText.Render("The font cache is empty. Press r to load fonts."))
	}

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) listTitle() string {
	var title string
	if m.tab == TabFavorites {
		title = fmt.Sprintf("Favorites (%s, %s)",
			pluralize(len(m.projection.FavoritesFlat), "face", "faces"),
			pluralize(len(m.projection.Favorites), "family", "families"))
	} else {
		title = fmt.Sprintf("All Fonts (%s, %s)",
			pluralize(m.projection.MatchedRecords, "face", "faces"),
			pluralize(len(m.projection.Families), "family", "families"))
	}
	if m.filter != nil {
		title += " filtered"
	}
	return title
}

// renderFontList renders the visible rows, scrolled to keep the selection
// centered when the list is taller than the box.
func (m Model) renderFontList(width, height int, bgColor string) string {
	rows := m.visibleRecords()
	if len(rows) == 0 {
		bg := NewBgStyle(bgColor)
		msg := "No favorites yet. Press f on a face to add one."
		if m.filter != nil {
			msg = "No faces match " + truncate(m.query, width-16)
		}
		return bg.FillLine(bg.Render(msg, m.theme.Styles().MutedText), width)
	}

	offset := 0
	if height > 0 && len(rows) > height {
		offset = max(0, min(m.selectedRow-height/2, len(rows)-height))
	}
	end := len(rows)
	if height > 0 {
		end = min(end, offset+height)
	}

	familyWidth := max(width*45/100, 8)
	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		r := rows[i]
		// In the All tab the family name heads its group only.
		showFamily := m.tab == TabFavorites || i == 0 || rows[i-1].Family != r.Family
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatFontRow(r, showFamily, familyWidth, width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatFontRow formats one face. Format: "★ 2  Family  Style".
func (m Model) formatFontRow(r font.Record, showFamily bool, familyWidth, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var markStyle, rankStyle, familyStyle, styleStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markStyle, rankStyle, familyStyle, styleStyle = selText, selText, selText.Bold(true), selText
	} else {
		markStyle = styles.FavoriteText
		rankStyle = styles.FaintText
		familyStyle = styles.Text.Bold(true)
		styleStyle = styles.MutedText
	}

	mark := " "
	if r.Favorite {
		mark = "★"
	}

	var b strings.Builder
	b.WriteString(bg.Render(mark, markStyle))
	b.WriteString(bg.Space())

	used := 2
	if m.tab == TabFavorites {
		rank := "-"
		if n, ok := r.Rank(); ok {
			rank = fmt.Sprintf("%d", n+1)
		}
		b.WriteString(bg.Render(padRight(rank, 3), rankStyle))
		b.WriteString(bg.Space())
		used += 4
	}

	family := ""
	if showFamily {
		family = truncate(r.Family, familyWidth)
	}
	b.WriteString(bg.Render(padRight(family, familyWidth), familyStyle))
	b.WriteString(bg.Spaces(2))
	used += familyWidth + 2

	b.WriteString(bg.Render(truncate(r.Style, max(width-used, 4)), styleStyle))
	return b.String()
}

// renderDetailContent lists everything known about a face.
func (m Model) renderDetailContent(r font.Record, width int, bgColor string) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	valueWidth := max(width-12, 8)

	weight := font.ParseWeight(r.Style)
	italic := "no"
	if font.IsItalic(r.Style) {
		italic = "yes"
	}

	favorite := bg.Render("no", styles.MutedText)
	if r.Favorite {
		if n, ok := r.Rank(); ok {
			favorite = bg.Render(fmt.Sprintf("★ rank %d", n+1), styles.FavoriteText)
		} else {
			favorite = bg.Render("★ unranked", styles.FavoriteText)
		}
	}

	siblings, pos := m.familyPosition(r)

	type field struct {
		label string
		value string
	}
	fields := []field{
		{"Name", bg.Render(truncate(r.DisplayName, valueWidth), styles.Text.Bold(true))},
		{"Family", bg.Render(truncate(r.Family, valueWidth), styles.Text)},
		{"Style", bg.Render(truncate(r.Style, valueWidth), styles.Text)},
		{"Weight", bg.Render(fmt.Sprintf("%d %s", weight, font.WeightLabel(weight)), styles.Text)},
		{"Italic", bg.Render(italic, styles.Text)},
		{"Stretch", bg.Render(font.Stretch(r.Style), styles.Text)},
		{"ID", bg.Render(truncateMiddle(r.ID, valueWidth), styles.AccentText)},
		{"Favorite", favorite},
		{"Styles", bg.Render(fmt.Sprintf("%d of %d in family", pos+1, siblings), styles.MutedText)},
	}

	lines := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		lines = append(lines, bg.FillLine(bg.Render(padRight(f.label, 10), styles.FaintText)+bg.Spaces(2)+f.value, width))
	}
	if m.filter != nil {
		lines = append(lines, bg.FillLine("", width))
		lines = append(lines, bg.FillLine(bg.Render("Filter", styles.FaintText)+bg.Spaces(2)+
			bg.Render(truncate(m.query, valueWidth), styles.MutedText), width))
	}
	return strings.Join(lines, "\n")
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Frame style: ┌─── Title ───┐
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderColor := lipgloss.Color(borderColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", max(innerWidth, 0)), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(max(innerWidth, 0)).Background(bgColor)

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	paddedLines := make([]string, 0, max(boxHeight, 0))
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
