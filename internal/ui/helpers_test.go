package ui

import (
	"strings"
	"testing"
	"time"
)

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-5 * time.Second, "now"},
		{300 * time.Millisecond, "now"},
		{12 * time.Second, "12s"},
		{61 * time.Second, "1m"},
		{2*time.Hour + 10*time.Second, "2h"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
		{49 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := humanizeDuration(tt.in); got != tt.want {
			t.Fatalf("humanizeDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Inter", 10, "Inter"},
		{"Inter Display", 8, "Inter D…"},
		{"Inter", 1, "…"},
		{" padded ", 0, "padded"},
		{"Noto Sans 日本語", 11, "Noto Sans …"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "Inter-Bold", 20, "Inter-Bold"},
		{"blank", "  ", 10, ""},
		{"tiny limit", "abcd", 2, "ab"},
		{"postscript name", "SourceSerif4Display-SemiboldItalic", 15, "SourceS…dItalic"},
		{"path keeps extension", "/usr/share/fonts/DejaVuSans-BoldOblique.ttf", 20, "/usr/sha…Oblique.ttf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMiddle(tt.in, tt.limit)
			if got != tt.want {
				t.Fatalf("truncateMiddle(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
			if tt.limit > 0 && len([]rune(got)) > tt.limit {
				t.Fatalf("result %q longer than %d runes", got, tt.limit)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
	if got := padRight("★", 3); !strings.HasPrefix(got, "★") || len([]rune(got)) != 3 {
		t.Fatalf("padRight rune = %q", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "face", "faces"); got != "1 face" {
		t.Fatalf("pluralize(1) = %q", got)
	}
	if got := pluralize(0, "face", "faces"); got != "0 faces" {
		t.Fatalf("pluralize(0) = %q", got)
	}
}
