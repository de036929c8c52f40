// Package fontsync decides when the host is asked for fonts and feeds the
// answer into the replicated store.
//
// The controller enumerates only when the store comes up empty or when a
// refresh is forced. Every attempt captures a generation; clearing the cache
// bumps it, and an attempt that finishes under an older generation is dropped
// without touching the store or the UI state.
package fontsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/fontshelf/internal/font"
	"github.com/five82/fontshelf/internal/localfont"
	"github.com/five82/fontshelf/internal/state"
)

// ErrNoFonts is reported when a prompt-state host yields nothing.
var ErrNoFonts = errors.New("no local fonts were returned")

// ErrStale is returned by an attempt overtaken by ClearCache.
var ErrStale = errors.New("font load superseded")

// Store is the part of the replicated store the controller writes to.
type Store interface {
	WaitReady(ctx context.Context) error
	Len() int
	ReplaceAll(records []font.Record) (bool, error)
	Reconcile(records []font.Record) bool
	Clear() bool
}

// Controller runs the load lifecycle.
type Controller struct {
	host   localfont.Host
	store  Store
	ui     *state.Store
	logger *slog.Logger

	mu  sync.Mutex
	gen uint64
}

// New wires a controller. ui may be nil when nothing renders it.
func New(host localfont.Host, store Store, ui *state.Store, logger *slog.Logger) *Controller {
	if ui == nil {
		ui = &state.Store{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		host:   host,
		store:  store,
		ui:     ui,
		logger: logger.With("component", "fontsync"),
	}
}

// State exposes the UI state the controller publishes to.
func (c *Controller) State() *state.Store {
	return c.ui
}

// Generation returns the current generation token.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Start waits for the store to hydrate and enumerates only if it is empty.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.store.WaitReady(ctx); err != nil {
		return err
	}
	if n := c.store.Len(); n > 0 {
		c.logger.Debug("using cached font list", "records", n)
		c.ui.Populated()
		return nil
	}
	return c.populate(ctx, false)
}

// LoadAllFonts re-enumerates regardless of what the store holds. Faces still
// installed keep their favorite flag and rank.
func (c *Controller) LoadAllFonts(ctx context.Context) error {
	if err := c.store.WaitReady(ctx); err != nil {
		return err
	}
	return c.populate(ctx, true)
}

// ClearCache empties the store and returns the lifecycle to idle. Any load in
// flight is discarded when it completes.
func (c *Controller) ClearCache(ctx context.Context) error {
	if err := c.store.WaitReady(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.store.Clear()
	c.ui.Reset(c.gen)
	c.logger.Info("font cache cleared", "generation", c.gen)
	return nil
}

func (c *Controller) populate(ctx context.Context, force bool) error {
	c.mu.Lock()
	gen := c.gen
	c.ui.Begin(gen)
	c.mu.Unlock()

	perm := c.host.CheckPermission(ctx)
	if !c.setPermission(gen, perm) {
		return ErrStale
	}
	switch perm {
	case localfont.PermissionUnsupported:
		return c.fail(gen, state.ErrorUnsupported, localfont.ErrUnsupported)
	case localfont.PermissionDenied:
		return c.fail(gen, state.ErrorDenied, localfont.ErrPermissionDenied)
	}

	descs, err := c.host.ListFonts(ctx)
	if err != nil {
		return c.fail(gen, state.ErrorEnumeration, err)
	}
	if len(descs) == 0 && perm == localfont.PermissionPrompt {
		return c.fail(gen, state.ErrorEnumeration, ErrNoFonts)
	}
	records := font.Records(descs)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.logger.Debug("discarding stale font load", "generation", gen, "current", c.gen)
		return ErrStale
	}
	if c.store.Len() == 0 {
		if _, err := c.store.ReplaceAll(records); err != nil {
			c.ui.Fail(state.ErrorEnumeration, err)
			return err
		}
	} else if force {
		c.store.Reconcile(records)
	}
	c.ui.Populated()
	c.logger.Info("fonts loaded", "faces", len(records), "forced", force)
	return nil
}

// setPermission publishes perm unless a newer attempt or a clear has taken
// over.
func (c *Controller) setPermission(gen uint64, perm localfont.Permission) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.ui.SetPermission(string(perm))
	return true
}

func (c *Controller) fail(gen uint64, kind state.ErrorKind, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return ErrStale
	}
	c.ui.Fail(kind, err)
	c.logger.Warn("font load failed", "kind", string(kind), "error", err)
	return err
}
