package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fontshelf/internal/font"
	"github.com/five82/fontshelf/internal/fontstore"
	"github.com/five82/fontshelf/internal/fontsync"
	"github.com/five82/fontshelf/internal/prefs"
	"github.com/five82/fontshelf/internal/state"
	"github.com/five82/fontshelf/internal/views"
)

// View represents the current active view.
type View int

const (
	ViewFonts View = iota
	ViewLogs
)

// Tab selects the font projection.
type Tab int

const (
	TabAll Tab = iota
	TabFavorites
)

func (t Tab) prefsName() string {
	if t == TabFavorites {
		return prefs.TabFavorites
	}
	return prefs.TabAll
}

func tabFromPrefs(name string) Tab {
	if name == prefs.TabFavorites {
		return TabFavorites
	}
	return TabAll
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *fontstore.Store
	Controller *fontsync.Controller
	State      *state.Store
	LogFile    string
	Prefs      prefs.Prefs
	PrefsPath  string
	Tick       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *fontstore.Store
	controller *fontsync.Controller
	state      *state.Store
	logFile    string
	prefsPath  string
	tick       time.Duration
	keys       keyMap

	// Store subscription
	changes     chan struct{}
	unsubscribe func()

	// UI state
	theme       Theme
	currentView View
	tab         Tab
	width       int
	height      int
	ready       bool

	// Data state
	records    []font.Record
	projection views.Snapshot
	filter     *views.Filter
	query      string // as typed; filter may be the expanded form
	snapshot   state.Snapshot
	lastChange time.Time

	// Font list state
	selectedID  string
	selectedRow int

	// Search input
	searchActive bool
	searchInput  textinput.Model

	// Log state
	logViewport viewport.Model
	logState    logState

	// Action feedback
	statusText  string
	statusError bool
	statusAt    time.Time

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model and subscribes it to store changes.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	uiState := opts.State
	if uiState == nil && opts.Controller != nil {
		uiState = opts.Controller.State()
	}
	if uiState == nil {
		uiState = &state.Store{}
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = `name, or expr like favorite && weight >= 700`
	ti.CharLimit = 200
	ti.Prompt = "/"

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		controller:  opts.Controller,
		state:       uiState,
		logFile:     opts.LogFile,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		changes:     make(chan struct{}, 1),
		unsubscribe: func() {},
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewFonts,
		tab:         tabFromPrefs(opts.Prefs.Tab),
		searchInput: ti,
	}
	m.initLogState()

	if m.store != nil {
		changes := m.changes
		// The callback runs on the mutating goroutine; it only nudges the
		// channel so it never waits on the program's event loop.
		m.unsubscribe = m.store.Subscribe(func(fontstore.Change) {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		m.records = m.store.Records()
	}
	m.rebuild()
	m.snapshot = m.state.Snapshot()
	return m
}

// Close removes the store subscription.
func (m Model) Close() {
	m.unsubscribe()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		waitForChange(m.changes),
	}
	if m.controller != nil {
		cmds = append(cmds, m.lifecycleCmd(opStart))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.clampSelection()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case changeMsg:
		m.reload()
		return m, waitForChange(m.changes)

	case actionMsg:
		m.handleAction(msg)
		return m, nil

	case logBatchMsg:
		m.handleLogBatch(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.searchActive {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.logState.contentVersion++
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewFonts):
		m.currentView = ViewFonts
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, m.refreshLogs(true)
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleFontsKey(msg)
	}
}

// handleFontsKey processes keyboard input for the font list.
func (m Model) handleFontsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.visibleRecords()

	switch {
	case key.Matches(msg, m.keys.Tab):
		if m.tab == TabAll {
			m.tab = TabFavorites
		} else {
			m.tab = TabAll
		}
		m.selectedRow = 0
		m.selectedID = ""
		m.clampSelection()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ClearSearch), key.Matches(msg, m.keys.Escape):
		if m.filter != nil {
			m.filter = nil
			m.query = ""
			m.rebuild()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.lifecycleCmd(opReload)

	case key.Matches(msg, m.keys.ClearCache):
		m.modal = newConfirmModal(
			"Clear font cache?",
			"Every cached face is removed, favorites included. The next reload enumerates the font directories again.",
			m.lifecycleCmd(opClear),
		)
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite):
		if len(rows) == 0 {
			return m, nil
		}
		return m, m.toggleFavoriteCmd(rows[m.selectedRow].ID)

	case key.Matches(msg, m.keys.NextStyle):
		m.nextStyle()
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		cmd := m.moveFavorite(-1)
		return m, cmd

	case key.Matches(msg, m.keys.MoveDown):
		cmd := m.moveFavorite(1)
		return m, cmd
	}

	if len(rows) == 0 {
		return m, nil
	}
	page := max(m.listHeight(), 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = len(rows) - 1
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow += page
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow -= page
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow += page / 2
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow -= page / 2
	default:
		return m, nil
	}
	m.selectedRow = max(0, min(m.selectedRow, len(rows)-1))
	m.syncSelectedID()
	return m, nil
}

// handleSearchInput handles keyboard input while the search box is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searchActive = false
		m.searchInput.Blur()
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.filter = views.Query(m.query)
		m.selectedRow = 0
		m.selectedID = ""
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleTick refreshes lifecycle state and, when visible, the log pane.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.snapshot = m.state.Snapshot()
	if m.statusText != "" && time.Since(m.statusAt) > StatusFlashDuration {
		m.statusText = ""
		m.statusError = false
	}

	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(false); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// reload pulls the current list from the store and recomputes projections.
func (m *Model) reload() {
	if m.store == nil {
		return
	}
	m.records = m.store.Records()
	m.lastChange = time.Now()
	m.rebuild()
}

// rebuild recomputes projections and keeps the selection on the same face.
func (m *Model) rebuild() {
	m.projection = views.Build(m.records, m.filter)
	m.clampSelection()
}

// savePrefs persists the theme and tab. Failures are shown, not fatal.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Tab: m.tab.prefsName()})
	if err != nil {
		m.flash("save preferences: "+err.Error(), true)
	}
}

func (m *Model) flash(text string, isErr bool) {
	m.statusText = text
	m.statusError = isErr
	m.statusAt = time.Now()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderFonts())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

type changeMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the store reports a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changeMsg{}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
