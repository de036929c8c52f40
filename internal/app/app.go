package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/five82/fontshelf/internal/config"
	"github.com/five82/fontshelf/internal/fontstore"
	"github.com/five82/fontshelf/internal/fontsync"
	"github.com/five82/fontshelf/internal/localfont"
	"github.com/five82/fontshelf/internal/logging"
	"github.com/five82/fontshelf/internal/persist"
	"github.com/five82/fontshelf/internal/prefs"
	"github.com/five82/fontshelf/internal/state"
	"github.com/five82/fontshelf/internal/ui"
)

// Options configure the fontshelf application.
type Options struct {
	ConfigPath string
	DBPath     string // overrides the configured database path
	LogLevel   string // overrides the configured log level
}

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Host       *localfont.FS
	Store      *fontstore.Store
	State      *state.Store
	Controller *fontsync.Controller

	db        *persist.DB
	logCloser io.Closer
}

// Open loads configuration and builds every component. The store starts
// hydrating immediately; nothing is enumerated until the controller is
// started.
func Open(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p := strings.TrimSpace(opts.DBPath); p != "" {
		cfg.DBPath = p
	}
	if l := strings.TrimSpace(opts.LogLevel); l != "" {
		cfg.LogLevel = l
	}

	logCloser, err := logging.Configure(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	logger := slog.Default()

	db, err := persist.Open(cfg.DBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("open font database: %w", err)
	}

	store, err := fontstore.Open(fontstore.Options{
		Document:     cfg.Document,
		Backend:      db,
		CompactAfter: cfg.CompactAfter,
		Logger:       logger,
	})
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("open font store: %w", err)
	}

	dirs := cfg.FontDirs
	if len(dirs) == 0 {
		dirs = localfont.DefaultDirs()
	}
	host := localfont.NewFS(dirs, localfont.Options{Workers: cfg.ParseWorkers, Logger: logger})

	uiState := &state.Store{}
	controller := fontsync.New(host, store, uiState, logger)

	logger.Info("fontshelf opened",
		"document", cfg.Document,
		"db", cfg.DBPath,
		"replica", store.Replica(),
		"font_dirs", len(dirs),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Host:       host,
		Store:      store,
		State:      uiState,
		Controller: controller,
		db:         db,
		logCloser:  logCloser,
	}, nil
}

// Close flushes the store and releases the database and log file.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		if err := a.Store.LastPersistenceError(); err != nil {
			a.Logger.Warn("closing with persistence errors", "failures", a.Store.PersistenceFailures(), "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run boots the fontshelf TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	a, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	userPrefs, err := prefs.Load(a.Config.PrefsPath)
	if err != nil {
		a.Logger.Warn("preferences unreadable, using defaults", "path", a.Config.PrefsPath, "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pick up writes made by other fontshelf processes sharing the database.
	done := StartPuller(ctx, a.Store, a.State, a.Config.PullInterval, a.Logger)
	defer func() {
		cancel()
		<-done
	}()

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      a.Store,
		Controller: a.Controller,
		State:      a.State,
		LogFile:    a.Config.LogFile,
		Prefs:      userPrefs,
		PrefsPath:  a.Config.PrefsPath,
	})
}
