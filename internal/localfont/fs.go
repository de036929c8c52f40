package localfont

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/errgroup"

	"github.com/five82/fontshelf/internal/font"
)

var fontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
	".otc": true,
}

// Options configure an FS host.
type Options struct {
	Workers int // parallel file parsers; zero uses GOMAXPROCS
	Logger  *slog.Logger
}

// FS enumerates fonts stored under a set of directories.
type FS struct {
	dirs    []string
	workers int
	logger  *slog.Logger
}

// NewFS returns a host scanning dirs. Empty entries are dropped.
func NewFS(dirs []string, opts Options) *FS {
	var cleaned []string
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(d))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{
		dirs:    cleaned,
		workers: workers,
		logger:  logger.With("component", "localfont"),
	}
}

// Dirs returns the directories scanned.
func (h *FS) Dirs() []string {
	return slices.Clone(h.dirs)
}

// DefaultDirs returns the usual font directories for the running OS, or nil
// when the OS has none known.
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	join := func(parts ...string) string {
		if home == "" {
			return ""
		}
		return filepath.Join(append([]string{home}, parts...)...)
	}

	var dirs []string
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		dirs = []string{
			join(".local", "share", "fonts"),
			join(".fonts"),
			"/usr/local/share/fonts",
			"/usr/share/fonts",
		}
	case "darwin":
		dirs = []string{
			join("Library", "Fonts"),
			"/Library/Fonts",
			"/System/Library/Fonts",
		}
	case "windows":
		if windir := os.Getenv("WINDIR"); windir != "" {
			dirs = append(dirs, filepath.Join(windir, "Fonts"))
		}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
	default:
		return nil
	}
	out := dirs[:0]
	for _, d := range dirs {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// CheckPermission maps directory accessibility onto a Permission. Any readable
// directory grants access; only unreadable ones deny it; none existing yet is a
// prompt.
func (h *FS) CheckPermission(ctx context.Context) Permission {
	if len(h.dirs) == 0 {
		return PermissionUnsupported
	}
	existing, denied := 0, 0
	for _, dir := range h.dirs {
		if ctx.Err() != nil {
			return PermissionPrompt
		}
		info, err := os.Stat(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case errors.Is(err, fs.ErrPermission):
			existing++
			denied++
			continue
		case err != nil:
			continue
		case !info.IsDir():
			continue
		}
		existing++
		f, err := os.Open(dir)
		if err != nil {
			denied++
			continue
		}
		_, err = f.ReadDir(1)
		_ = f.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			denied++
			continue
		}
		return PermissionGranted
	}
	if existing > 0 && denied == existing {
		return PermissionDenied
	}
	return PermissionPrompt
}

type fontFile struct {
	path string
}

// ListFonts walks every directory and returns the faces it can parse, in
// directory then path order. Faces sharing an ID keep the first occurrence.
func (h *FS) ListFonts(ctx context.Context, ids ...string) ([]font.Descriptor, error) {
	files, err := h.collect(ctx)
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}

	var want map[string]bool
	if len(ids) > 0 {
		want = make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
	}

	results := make([][]font.Descriptor, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			faces, err := parseFile(file.path)
			if err != nil {
				h.logger.Debug("skipping font file", "path", file.path, "error", err)
				return nil
			}
			results[i] = faces
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &EnumerationError{Err: err}
	}

	seen := make(map[string]bool)
	var out []font.Descriptor
	for _, faces := range results {
		for _, d := range faces {
			if seen[d.ID] {
				continue
			}
			if want != nil && !want[d.ID] {
				continue
			}
			seen[d.ID] = true
			out = append(out, d)
		}
	}
	h.logger.Debug("enumerated fonts", "files", len(files), "faces", len(out))
	return out, nil
}

func (h *FS) collect(ctx context.Context) ([]fontFile, error) {
	var files []fontFile
	for _, dir := range h.dirs {
		root := dir
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			root = resolved
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == root {
					if errors.Is(err, fs.ErrNotExist) {
						return fs.SkipAll
					}
					return err
				}
				h.logger.Debug("skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if fontExtensions[strings.ToLower(filepath.Ext(path))] {
				files = append(files, fontFile{path: path})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	return files, nil
}

// FetchBinary reads the file that holds the face with id. Collection files
// are returned whole.
func (h *FS) FetchBinary(ctx context.Context, id string) ([]byte, error) {
	faces, err := h.ListFonts(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	data, err := os.ReadFile(faces[0].Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", faces[0].Path, err)
	}
	return data, nil
}

// Ext guesses a file extension from a font's leading tag.
func Ext(data []byte) string {
	if len(data) < 4 {
		return ".ttf"
	}
	switch string(data[:4]) {
	case "ttcf":
		return ".ttc"
	case "OTTO":
		return ".otf"
	default:
		return ".ttf"
	}
}

func parseFile(path string) ([]font.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	var (
		buf   sfnt.Buffer
		faces []font.Descriptor
	)
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		d, ok := describe(f, &buf)
		if !ok {
			continue
		}
		d.Path = path
		d.Index = i
		faces = append(faces, d)
	}
	return faces, nil
}

func describe(f *sfnt.Font, buf *sfnt.Buffer) (font.Descriptor, bool) {
	name := func(ids ...sfnt.NameID) string {
		for _, id := range ids {
			if s, err := f.Name(buf, id); err == nil {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
		return ""
	}

	family := name(sfnt.NameIDTypographicFamily, sfnt.NameIDFamily)
	if family == "" {
		return font.Descriptor{}, false
	}
	style := name(sfnt.NameIDTypographicSubfamily, sfnt.NameIDSubfamily)
	if style == "" {
		style = "Regular"
	}
	full := name(sfnt.NameIDFull)
	if full == "" {
		full = family + " " + style
	}
	id := name(sfnt.NameIDPostScript)
	if id == "" {
		id = strings.ReplaceAll(family, " ", "") + "-" + strings.ReplaceAll(style, " ", "")
	}
	return font.Descriptor{
		ID:          id,
		DisplayName: full,
		Family:      family,
		Style:       style,
	}, true
}
