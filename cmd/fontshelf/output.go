package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent = lipgloss.Color("#89b4fa")
	gold   = lipgloss.Color("#f9e2af")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	accentStyle   = lipgloss.NewStyle().Foreground(accent)
	favoriteStyle = lipgloss.NewStyle().Foreground(gold)
	mutedStyle    = lipgloss.NewStyle().Foreground(dim)
)

func muted(s string) string { return mutedStyle.Render(s) }

func star(on bool) string {
	if on {
		return favoriteStyle.Render("★")
	}
	return mutedStyle.Render("☆")
}

// renderTable draws rows under headers with rounded borders and dimmed odd
// rows.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	odd := cell.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return cell
			default:
				return odd
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

type field struct {
	key, value string
}

// renderFields aligns "key:  value" lines.
func renderFields(fields ...field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.key))
	}
	var b strings.Builder
	for _, f := range fields {
		label := fmt.Sprintf("%-*s", width+1, f.key+":")
		b.WriteString(mutedStyle.Render(label) + " " + f.value + "\n")
	}
	return b.String()
}
