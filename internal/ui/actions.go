package ui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fontshelf/internal/fontsync"
	"github.com/five82/fontshelf/internal/views"
)

type actionOp string

const (
	opStart    actionOp = "start"
	opReload   actionOp = "reload"
	opClear    actionOp = "clear"
	opFavorite actionOp = "favorite"
	opOrder    actionOp = "order"
)

// actionMsg reports the outcome of a store or controller call.
type actionMsg struct {
	op      actionOp
	id      string
	name    string
	on      bool // favorite state after a toggle
	changed int
	err     error
}

// Store and controller calls run as commands, off the event loop: hydration
// waits and enumeration can take a while.

func (m Model) lifecycleCmd(op actionOp) tea.Cmd {
	c, ctx, store := m.controller, m.ctx, m.store
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		var err error
		switch op {
		case opStart:
			err = c.Start(ctx)
		case opReload:
			err = c.LoadAllFonts(ctx)
		case opClear:
			err = c.ClearCache(ctx)
		}
		msg := actionMsg{op: op, err: err}
		if store != nil {
			msg.changed = store.Len()
		}
		return msg
	}
}

func (m Model) toggleFavoriteCmd(id string) tea.Cmd {
	store := m.store
	if store == nil || id == "" {
		return nil
	}
	return func() tea.Msg {
		msg := actionMsg{op: opFavorite, id: id}
		if store.ToggleFavorite(id) {
			msg.changed = 1
		}
		if r, ok := store.Get(id); ok {
			msg.name = r.DisplayName
			msg.on = r.Favorite
		}
		return msg
	}
}

func (m Model) persistOrderCmd(ids []string) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return actionMsg{op: opOrder, changed: store.PersistOrder(ids)}
	}
}

// moveFavorite swaps the selected favorite with its neighbour and persists
// the whole favorites order, which leaves every favorite densely ranked.
func (m *Model) moveFavorite(delta int) tea.Cmd {
	if m.tab != TabFavorites {
		m.flash("reorder favorites from the Favorites tab", false)
		return nil
	}
	if m.filter != nil {
		m.flash("clear the filter before reordering", false)
		return nil
	}

	rows := views.SortFavoritesFlat(m.records)
	i := m.selectedRow
	j := i + delta
	if i < 0 || i >= len(rows) || j < 0 || j >= len(rows) {
		return nil
	}

	ids := make([]string, len(rows))
	for k, r := range rows {
		ids[k] = r.ID
	}
	ids[i], ids[j] = ids[j], ids[i]
	m.selectedRow = j
	m.selectedID = ids[j]
	return m.persistOrderCmd(ids)
}

func (m *Model) handleAction(msg actionMsg) {
	m.snapshot = m.state.Snapshot()

	if errors.Is(msg.err, fontsync.ErrStale) {
		m.flash("font load discarded after cache clear", false)
		return
	}

	switch msg.op {
	case opStart:
		// Failures already show in the header.
	case opReload:
		if msg.err != nil {
			m.flash("reload failed: "+msg.err.Error(), true)
			return
		}
		m.flash(fmt.Sprintf("reloaded %s", pluralize(msg.changed, "face", "faces")), false)
	case opClear:
		if msg.err != nil {
			m.flash("clear failed: "+msg.err.Error(), true)
			return
		}
		m.flash("font cache cleared, press r to load fonts", false)
	case opFavorite:
		if msg.changed == 0 {
			return
		}
		if msg.on {
			m.flash("★ "+msg.name, false)
		} else {
			m.flash("☆ "+msg.name, false)
		}
	case opOrder:
		if msg.changed > 0 {
			m.flash("favorite order saved", false)
		}
	}
}
