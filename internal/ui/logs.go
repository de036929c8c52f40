package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fontshelf/internal/logtail"
)

// levelCycle is the order v steps through the minimum level.
var levelCycle = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// logState is the log pane: parsed tail, filter and follow mode.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	minLevel    slog.Level
	lastRefresh time.Time
	err         error

	contentVersion uint64 // bumped whenever rendered content would change
	lastRendered   uint64
	rendered       bool
}

type logBatchMsg struct {
	lines []string
	err   error
	at    time.Time
}

func (m *Model) initLogState() {
	m.logState = logState{
		follow:   true,
		minLevel: slog.LevelDebug,
	}
}

// logPaneSize is the viewport inside the log box: the header, command bar and
// status line take three rows, the box border two more.
func (m Model) logPaneSize() (width, height int) {
	return max(m.width-4, 1), max(m.height-5, 1)
}

func (m *Model) initLogViewport() {
	w, h := m.logPaneSize()
	m.logViewport = viewport.New(w, h)
}

// updateLogViewport resizes the viewport and re-renders only when the entries,
// level filter or theme changed since the last render.
func (m *Model) updateLogViewport() {
	if m.width == 0 {
		return
	}
	m.logViewport.Width, m.logViewport.Height = m.logPaneSize()
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if !m.logState.rendered || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = m.logState.contentVersion
		m.logState.rendered = true
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	contentHeight := m.height - 3

	title := "Log"
	if m.logFile != "" {
		title = "Log " + truncateMiddle(m.logFile, max(m.width/2, 10))
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, contentHeight, true)
	return box + "\n" + m.renderLogStatus(styles, bg)
}

func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.err != nil {
		return bg.Render("read failed: "+m.logState.err.Error(), styles.DangerText)
	}
	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	shown := len(m.visibleLogEntries())
	status := fmt.Sprintf("%d of %d lines at %s or above, auto-tail %s",
		shown, len(m.logState.entries), levelName(m.logState.minLevel), autoTail)
	return bg.Render(status, styles.FaintText)
}

func (m Model) visibleLogEntries() []logtail.Entry {
	out := make([]logtail.Entry, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		if e.Level >= m.logState.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	entries := m.visibleLogEntries()
	if len(entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	var b strings.Builder
	for i, e := range entries {
		b.WriteString(bg.FillLine(m.formatLogEntry(e, styles, bg), width))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatLogEntry renders "15:04:05 WARN  message key=value".
func (m *Model) formatLogEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if !e.Parsed {
		return bg.Render(e.Raw, styles.MutedText)
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(padRight(levelName(e.Level), 5), m.levelStyle(e.Level, styles).Bold(true)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(e.Message, styles.Text))
	for _, a := range e.Attrs {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(a.Key+"=", styles.FaintText))
		style := styles.MutedText
		if a.Key == "error" {
			style = styles.DangerText
		}
		b.WriteString(bg.Render(a.Value, style))
	}
	return b.String()
}

func (m *Model) levelStyle(level slog.Level, styles Styles) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level >= slog.LevelInfo:
		return styles.SuccessText
	default:
		return styles.InfoText
	}
}

func levelName(level slog.Level) string {
	return level.String()
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		next := levelCycle[0]
		for i, lvl := range levelCycle {
			if lvl == m.logState.minLevel {
				next = levelCycle[(i+1)%len(levelCycle)]
				break
			}
		}
		m.logState.minLevel = next
		m.logState.contentVersion++
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewFonts
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case m.scrollLog(msg):
		// Scrolling by hand stops auto-tail until G or space.
		m.logState.follow = false
	}

	return m, nil
}

// scrollLog applies a manual scroll key and reports whether msg was one.
func (m *Model) scrollLog(msg tea.KeyMsg) bool {
	vp := &m.logViewport
	switch {
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		vp.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		vp.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		vp.PageUp()
	default:
		return false
	}
	return true
}

// refreshLogs reads the log tail. Without force, reads closer together than
// LogRefreshDebounce are skipped.
func (m Model) refreshLogs(force bool) tea.Cmd {
	if m.logFile == "" {
		return nil
	}
	if !force && time.Since(m.logState.lastRefresh) < LogRefreshDebounce {
		return nil
	}
	path := m.logFile
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logBatchMsg{lines: lines, err: err, at: time.Now()}
	}
}

func (m *Model) handleLogBatch(msg logBatchMsg) {
	m.logState.lastRefresh = msg.at
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	m.logState.entries = logtail.ParseLines(msg.lines, slog.LevelDebug)
	m.logState.contentVersion++
	m.updateLogViewport()
}
