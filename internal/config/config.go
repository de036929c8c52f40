package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved fontshelf configuration.
type Config struct {
	FontDirs     []string // empty means the OS defaults
	DBPath       string
	Document     string
	LogLevel     string
	LogFile      string
	ParseWorkers int
	CompactAfter int
	PullInterval time.Duration
	PrefsPath    string
}

const (
	defaultConfigPath   = "~/.config/fontshelf/config.toml"
	defaultPrefsName    = "prefs.toml"
	defaultDataDir      = "~/.local/share/fontshelf"
	defaultDBName       = "fontshelf.db"
	defaultLogName      = "fontshelf.log"
	defaultDocument     = "local-fonts-viewer"
	defaultLogLevel     = "info"
	defaultPullInterval = 2 * time.Second
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

type fileConfig struct {
	FontDirs     []string `toml:"font_dirs"`
	DBPath       string   `toml:"db_path"`
	Document     string   `toml:"document"`
	LogLevel     string   `toml:"log_level"`
	LogFile      string   `toml:"log_file"`
	ParseWorkers int      `toml:"parse_workers"`
	CompactAfter int      `toml:"compact_after"`
	PullInterval string   `toml:"pull_interval"`
}

// envConfig holds FONTSHELF_* overrides. Unset variables leave zero values.
type envConfig struct {
	FontDirs     string `env:"FONT_DIRS"`
	DBPath       string `env:"DB_PATH"`
	Document     string `env:"DOCUMENT"`
	LogLevel     string `env:"LOG_LEVEL"`
	LogFile      string `env:"LOG_FILE"`
	ParseWorkers int    `env:"PARSE_WORKERS"`
	CompactAfter int    `env:"COMPACT_AFTER"`
	PullInterval string `env:"PULL_INTERVAL"`
}

// Load reads the config file, falling back to defaults when it is missing, and
// applies FONTSHELF_* environment overrides on top.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}

	var over envConfig
	if err := env.ParseWithOptions(&over, env.Options{Prefix: "FONTSHELF_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	merge(&raw, over)

	cfg := Config{
		Document:     strings.TrimSpace(raw.Document),
		LogLevel:     strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		ParseWorkers: raw.ParseWorkers,
		CompactAfter: raw.CompactAfter,
		PrefsPath:    filepath.Join(filepath.Dir(resolved), defaultPrefsName),
	}
	for _, dir := range raw.FontDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		cfg.FontDirs = append(cfg.FontDirs, mustExpand(dir))
	}
	if cfg.Document == "" {
		cfg.Document = defaultDocument
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if !validLogLevels[cfg.LogLevel] {
		return Config{}, fmt.Errorf("invalid log_level %q", raw.LogLevel)
	}
	if cfg.ParseWorkers < 0 {
		return Config{}, fmt.Errorf("parse_workers must not be negative, got %d", cfg.ParseWorkers)
	}

	cfg.PullInterval = defaultPullInterval
	if s := strings.TrimSpace(raw.PullInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid pull_interval %q", s)
		}
		cfg.PullInterval = d
	}

	cfg.DBPath = strings.TrimSpace(raw.DBPath)
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDataDir + "/" + defaultDBName
	}
	cfg.DBPath = mustExpand(cfg.DBPath)

	cfg.LogFile = strings.TrimSpace(raw.LogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultDataDir + "/" + defaultLogName
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func merge(raw *fileConfig, over envConfig) {
	if strings.TrimSpace(over.FontDirs) != "" {
		raw.FontDirs = filepath.SplitList(over.FontDirs)
	}
	if over.DBPath != "" {
		raw.DBPath = over.DBPath
	}
	if over.Document != "" {
		raw.Document = over.Document
	}
	if over.LogLevel != "" {
		raw.LogLevel = over.LogLevel
	}
	if over.LogFile != "" {
		raw.LogFile = over.LogFile
	}
	if over.ParseWorkers != 0 {
		raw.ParseWorkers = over.ParseWorkers
	}
	if over.CompactAfter != 0 {
		raw.CompactAfter = over.CompactAfter
	}
	if over.PullInterval != "" {
		raw.PullInterval = over.PullInterval
	}
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
