package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const ellipsis = "…"

// truncate cuts value to at most limit runes, marking the cut with an
// ellipsis. A non-positive limit only trims.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	r := []rune(value)
	if limit <= 0 || len(r) <= limit {
		return value
	}
	if limit == 1 {
		return ellipsis
	}
	return string(r[:limit-1]) + ellipsis
}

// truncateMiddle keeps both ends of value so PostScript names and paths stay
// recognisable. A short file extension is kept whole.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	r := []rune(value)
	if limit <= 0 || len(r) <= limit {
		return value
	}
	if limit < 3 {
		return string(r[:limit])
	}

	ext := []rune(filepath.Ext(value))
	if len(ext) >= limit/2 {
		ext = nil
	}
	body := r[:len(r)-len(ext)]
	keep := limit - len(ext) - 1
	head := (keep + 1) / 2
	return string(body[:head]) + ellipsis + string(body[len(body)-(keep-head):]) + string(ext)
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// humanizeDuration renders d as a coarse age: "now", "12s", "3m", "2h 3m", "1d".
func humanizeDuration(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", d/time.Second)
	case d < time.Hour:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d < day:
		if m := (d % time.Hour) / time.Minute; m > 0 {
			return fmt.Sprintf("%dh %dm", d/time.Hour, m)
		}
		return fmt.Sprintf("%dh", d/time.Hour)
	default:
		return fmt.Sprintf("%dd", d/day)
	}
}

// pluralize returns "1 face" or "3 faces".
func pluralize(n int, singular, plural string) string {
	word := plural
	if n == 1 {
		word = singular
	}
	return fmt.Sprintf("%d %s", n, word)
}
