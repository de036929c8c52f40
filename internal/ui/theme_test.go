package ui

import (
	"testing"

	"github.com/five82/fontshelf/internal/state"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}

	names[0] = "mutated"
	if ThemeNames()[0] != "Nightfox" {
		t.Fatal("ThemeNames exposes the internal slice")
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown).Name = %q, want Nightfox fallback", got)
	}
}

func TestThemesDefineEveryPhase(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if th.Favorite == "" {
			t.Fatalf("%s: Favorite color empty", name)
		}
		for _, phase := range []state.Phase{state.PhaseIdle, state.PhaseLoading, state.PhasePopulated, state.PhaseError} {
			if th.Phases[phase] == "" {
				t.Fatalf("%s: no color for phase %q", name, phase)
			}
		}
	}
}

func TestPhaseColorFallsBackToMuted(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()
	if got := styles.PhaseColor(state.PhaseError); got != th.Phases[state.PhaseError] {
		t.Fatalf("PhaseColor(error) = %q, want %q", got, th.Phases[state.PhaseError])
	}
	unknown := state.Phase(99)
	if got := styles.PhaseColor(unknown); got != th.Muted {
		t.Fatalf("PhaseColor(unknown) = %q, want muted %q", got, th.Muted)
	}
	if got := styles.WithBackground(th.Surface).PhaseColor(unknown); got != th.Muted {
		t.Fatalf("WithBackground dropped the muted fallback: %q", got)
	}
}
