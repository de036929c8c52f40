package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string // empty means no file
		want    Prefs
		wantErr bool
	}{
		{"missing file", "", Default(), false},
		{"stored values", "theme = \"Slate\"\ntab = \"favorites\"\n", Prefs{Theme: "Slate", Tab: TabFavorites}, false},
		{"tab is case insensitive", "tab = \"Favorites\"\n", Prefs{Theme: defaultTheme, Tab: TabFavorites}, false},
		{"blank theme and unknown tab", "theme = \"  \"\ntab = \"recent\"\n", Default(), false},
		{"invalid toml", "theme = {{{\n", Default(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if tt.body != "" {
				writePrefs(t, path, tt.body)
			}
			got, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Load = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writePrefs(t, filepath.Join(home, ".config", "fontshelf", "prefs.toml"), "theme = \"Kanagawa\"\n")

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want Kanagawa", p.Theme)
	}
}

func TestSave_RoundTripLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "prefs.toml")

	want := Prefs{Theme: "Kanagawa", Tab: TabFavorites}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Overwrite once more to exercise the rename over an existing file.
	want.Theme = "Slate"
	if err := Save(path, want); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir holds %d entries, want only prefs.toml", len(entries))
	}
}
