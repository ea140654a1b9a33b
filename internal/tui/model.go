package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

// Source is where the model reads ledger state from. The model never
// writes to it; the journal session is the only writer.
type Source interface {
	Snapshot() ledger.Snapshot
}

// waitingHint is shown before the first system is known.
const waitingHint = "Waiting for journal events…"

// AppModel is the root BubbleTea model.
type AppModel struct {
	Source Source
	// Cached reports whether an address is already stored. Nil disables the
	// cached badge.
	Cached func(address int64) bool
	Keys   KeyMap
	Active ViewKind
	Detail DetailPanel
	Toasts []Toast
	Width  int
	Height int

	now      time.Time
	snap     ledger.Snapshot
	systems  []ledger.System
	anchors  []int
	cursor   int
	selected string          // key of the system under the cursor
	expanded map[string]bool // explicit fold state; absent means default
	cached   map[int64]bool
}

// NewAppModel creates a model reading from src.
func NewAppModel(src Source) AppModel {
	return AppModel{
		Source:   src,
		Keys:     DefaultKeyMap(),
		Detail:   NewDetailPanel(80, 20),
		now:      time.Now(),
		expanded: make(map[string]bool),
		cached:   make(map[int64]bool),
	}
}

// Init loads the first snapshot and starts the clock.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return MsgLedgerChanged{} },
		tickCmd(),
	)
}

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return MsgTick{Time: t}
	})
}

// Update handles all messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.render()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.Detail.Update(msg)

	case MsgTick:
		m.now = msg.Time
		cmds = append(cmds, tickCmd())

	case MsgLedgerChanged:
		cmds = append(cmds, m.reload())

	case MsgTailStopped:
		text := "Journal tail stopped"
		if msg.Err != nil {
			text += ": " + msg.Err.Error()
		}
		cmds = append(cmds, m.toast(text, true))

	case MsgSystemStored:
		m.cached[msg.Address] = true
		cmds = append(cmds, m.toast(fmt.Sprintf("💾 Stored %s (%s)", msg.Name, value.Credits(msg.TotalValue)), false))

	case MsgCacheStatus:
		m.cached[msg.Address] = msg.Cached

	case MsgToastExpired:
		m.Toasts = removeToast(m.Toasts, msg.ID)
		m.render()
	}

	return m, tea.Batch(cmds...)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.Keys.Toggle):
		if m.cursor < len(m.systems) {
			k := systemKey(m.systems[m.cursor])
			m.expanded[k] = !m.isExpanded(m.cursor)
			m.render()
		}
	case key.Matches(msg, m.Keys.CycleView):
		m.Active = m.Active.Next()
		m.render()
	case key.Matches(msg, m.Keys.CollapseAll):
		m.setAll(false)
	case key.Matches(msg, m.Keys.ExpandAll):
		m.setAll(true)
	case key.Matches(msg, m.Keys.PageUp):
		m.Detail.PageUp()
	case key.Matches(msg, m.Keys.PageDown):
		m.Detail.PageDown()
	case key.Matches(msg, m.Keys.Refresh):
		return m, m.reload()
	default:
		m.Detail.Update(msg)
	}
	return m, nil
}

// reload pulls a fresh snapshot, keeps the cursor on the same system and
// asks for the cache status of a newly entered system.
func (m *AppModel) reload() tea.Cmd {
	if m.Source == nil {
		return nil
	}
	m.snap = m.Source.Snapshot()
	m.systems = m.snap.Systems()

	// At the top the cursor follows the current system across jumps.
	if m.cursor != 0 {
		m.cursor = 0
		for i, sys := range m.systems {
			if systemKey(sys) == m.selected {
				m.cursor = i
				break
			}
		}
	}
	m.cursor = min(m.cursor, max(len(m.systems)-1, 0))
	m.remember()
	m.render()

	if cur := m.snap.Current; cur != nil && m.Cached != nil {
		if _, known := m.cached[cur.Address]; !known {
			lookup, addr := m.Cached, cur.Address
			return func() tea.Msg {
				return MsgCacheStatus{Address: addr, Cached: lookup(addr)}
			}
		}
	}
	return nil
}

func (m *AppModel) moveCursor(delta int) {
	if len(m.systems) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.systems)-1)
	m.remember()
	m.render()
	if m.cursor < len(m.anchors) {
		m.Detail.Reveal(m.anchors[m.cursor])
	}
}

func (m *AppModel) remember() {
	if m.cursor < len(m.systems) {
		m.selected = systemKey(m.systems[m.cursor])
	}
}

func (m *AppModel) setAll(expanded bool) {
	for _, sys := range m.systems {
		m.expanded[systemKey(sys)] = expanded
	}
	m.render()
}

// isExpanded reports the fold state of systems[i]. Only the current system
// starts expanded.
func (m AppModel) isExpanded(i int) bool {
	if v, ok := m.expanded[systemKey(m.systems[i])]; ok {
		return v
	}
	return i == 0 && m.snap.Current != nil
}

func (m *AppModel) toast(text string, isError bool) tea.Cmd {
	t, cmd := NewToast(text, isError)
	m.Toasts = pushToast(m.Toasts, t)
	m.render()
	return cmd
}

// render sizes the body viewport and fills it with the active view.
func (m *AppModel) render() {
	if m.Width > 0 && m.Height > 0 {
		used := lipgloss.Height(m.statusBar().View()) + lipgloss.Height(m.footer().View())
		if len(m.Toasts) > 0 {
			used += len(m.Toasts)
		}
		m.Detail.SetSize(m.Width, max(m.Height-used, 3))
	}

	if len(m.systems) == 0 {
		m.anchors = nil
		m.Detail.SetEmpty(waitingHint)
		return
	}
	st := treeState{
		cursor:     m.cursor,
		hasCurrent: m.snap.Current != nil,
		expanded:   m.isExpanded,
	}
	content, anchors := m.Active.renderer()(m.systems, st)
	m.anchors = anchors
	m.Detail.SetContent(content)
}

func (m AppModel) statusBar() StatusBar {
	sb := StatusBar{
		Width:        m.Width,
		Current:      m.snap.Current,
		Route:        m.snap.Route,
		SessionStart: m.snap.SessionStart,
		Now:          m.now,
		ViewName:     m.Active.String(),
	}
	if sb.SessionStart.IsZero() {
		sb.SessionStart = m.now
	}
	if m.snap.Current != nil {
		sb.Cached = m.cached[m.snap.Current.Address]
	}
	return sb
}

func (m AppModel) footer() Footer {
	return Footer{Width: m.Width, Bindings: FooterBindings(m.Keys)}
}

// View renders header, systems, toasts and footer.
func (m AppModel) View() string {
	parts := []string{m.statusBar().View(), m.Detail.View()}
	if toasts := RenderToasts(m.Toasts, m.Width); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.footer().View())
	return strings.Join(parts, "\n")
}

// systemKey identifies one visit of a system. The same address can appear
// more than once in the history.
func systemKey(sys ledger.System) string {
	return fmt.Sprintf("%d@%d", sys.Address, sys.VisitedAt.UnixNano())
}
