package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/fontshelf/internal/state"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	fonts := filepath.Join(dir, "fonts")
	if err := os.MkdirAll(fonts, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("font_dirs = [%q]\ndb_path = %q\nlog_file = %q\n",
		fonts, filepath.Join(dir, "shelf.db"), filepath.Join(dir, "shelf.log"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpen_WiresComponents(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	a, err := Open(Options{ConfigPath: writeConfig(t, dir), LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	if a.Config.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want override", a.Config.LogLevel)
	}
	if got := a.Host.Dirs(); len(got) != 1 || got[0] != filepath.Join(dir, "fonts") {
		t.Fatalf("Host dirs = %v", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Store.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}

	// An empty readable directory enumerates to nothing, which is not an
	// error once permission is granted.
	if err := a.Controller.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap := a.State.Snapshot(); snap.Phase != state.PhasePopulated {
		t.Fatalf("phase = %v, want populated", snap.Phase)
	}
	if _, err := os.Stat(filepath.Join(dir, "shelf.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}

func TestOpen_DBPathOverride(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	override := filepath.Join(dir, "other", "x.db")
	a, err := Open(Options{ConfigPath: writeConfig(t, dir), DBPath: override})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(override); err != nil {
		t.Fatalf("override database not created: %v", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(Options{ConfigPath: path}); err == nil {
		t.Fatal("Open accepted an invalid log level")
	}
}
