// Package tui is the interactive terminal front end.
//
// # Threading
//
// Everything in Model runs on bubbletea's single event loop. Network work
// (catalog load, runs, history queries) happens in tea.Cmd goroutines and
// comes back as messages, so the screen never blocks on the execution
// service.
//
// Execution state arrives as StateMsg, fed by Workbench.Subscribe and
// tea.Program.Send. Those notifications are delivered while the execution
// client holds its lock, so Update must never call into the execution client
// itself (State, Run, Reset); anything that would is issued as a tea.Cmd.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/execution"
	"github.com/sakif/algotest/internal/model"
	"github.com/sakif/algotest/internal/presenter"
)

// historySize is how many recent runs the history panel shows.
const historySize = 8

// Workbench is the application layer the UI drives. *service.Workbench
// implements it.
type Workbench interface {
	LoadCatalog(ctx context.Context) error
	Algorithms() []model.Algorithm
	Select(id int) (model.Algorithm, error)
	Run(ctx context.Context, raw string) (execution.State, bool)
	Reset()
	Present(s execution.State) presenter.View
	HistoryEnabled() bool
	Recent(ctx context.Context, limit int) ([]model.RunRecord, error)
	Restore(ctx context.Context, id string) (model.Algorithm, string, error)
	ClearHistory(ctx context.Context) (int64, error)
}

// =============================================================================
// Messages
// =============================================================================

// StateMsg carries an execution state change into the event loop.
type StateMsg struct {
	State execution.State
}

type catalogLoadedMsg struct {
	algorithms []model.Algorithm
	err        error
}

type runDoneMsg struct {
	state   execution.State
	applied bool
}

type historyMsg struct {
	runs []model.RunRecord
	err  error
}

type restoredMsg struct {
	algorithm model.Algorithm
	raw       string
	err       error
}

type historyClearedMsg struct {
	removed int64
	err     error
}

// =============================================================================
// Model
// =============================================================================

type focusArea int

const (
	focusList focusArea = iota
	focusInput
	focusHistory
)

// Model is the bubbletea model for the AlgoTest client.
type Model struct {
	ctx  context.Context
	wb   Workbench
	keys keyMap
	help help.Model

	input   textarea.Model
	spinner spinner.Model
	focus   focusArea

	// Catalog panel
	algorithms     []model.Algorithm
	cursor         int
	selected       *model.Algorithm
	catalogLoading bool
	catalogErr     error

	// Execution
	exec execution.State

	// History panel
	history       []model.RunRecord
	historyCursor int

	// notice is a one-line status message (history errors, restore results).
	notice string

	width  int
	height int
}

// New creates the UI model. ctx bounds every request the UI starts.
func New(ctx context.Context, wb Workbench) Model {
	ta := textarea.New()
	ta.Placeholder = model.ShapeArray.Placeholder()
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(48)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = cursorStyle

	return Model{
		ctx:            ctx,
		wb:             wb,
		keys:           defaultKeyMap(),
		help:           help.New(),
		input:          ta,
		spinner:        sp,
		focus:          focusList,
		catalogLoading: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), m.loadHistory())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if w := msg.Width/2 - 6; w > 20 {
			m.input.SetWidth(w)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case catalogLoadedMsg:
		m.catalogLoading = false
		m.catalogErr = msg.err
		m.algorithms = msg.algorithms
		if m.cursor >= len(m.algorithms) {
			m.cursor = max(len(m.algorithms)-1, 0)
		}
		m.syncSelection()
		return m, nil

	case StateMsg:
		return m.applyState(msg.State)

	case runDoneMsg:
		var cmd tea.Cmd
		if msg.applied {
			m, cmd = m.applyState(msg.state)
		}
		return m, tea.Batch(cmd, m.loadHistory())

	case historyMsg:
		if msg.err != nil {
			m.notice = "Could not load history"
			return m, nil
		}
		m.history = msg.runs
		if m.historyCursor >= len(m.history) {
			m.historyCursor = max(len(m.history)-1, 0)
		}
		return m, nil

	case restoredMsg:
		if msg.err != nil {
			m.notice = apperror.Message(msg.err)
			return m, nil
		}
		alg := msg.algorithm
		m.selected = &alg
		m.moveCursorTo(alg.ID)
		m.input.SetValue(msg.raw)
		m.input.Placeholder = alg.Shape().Placeholder()
		m.notice = "Restored input for " + alg.Name
		return m, m.setFocus(focusInput)

	case historyClearedMsg:
		if msg.err != nil {
			m.notice = "Could not clear history"
			return m, nil
		}
		m.history, m.historyCursor = nil, 0
		m.notice = "History cleared"
		return m, nil

	case spinner.TickMsg:
		if m.exec.Status != execution.Pending && m.exec.Status != execution.Validating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys that work everywhere, including while typing.
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Run):
		return m.run()
	case key.Matches(msg, m.keys.Reload):
		m.catalogLoading = true
		return m, m.loadCatalog()
	case key.Matches(msg, m.keys.ClearHistory):
		if !m.wb.HistoryEnabled() {
			return m, nil
		}
		return m, m.clearHistory()
	case key.Matches(msg, m.keys.Reset):
		m.notice = ""
		return m, m.reset()
	case key.Matches(msg, m.keys.Focus):
		return m, m.setFocus(m.nextFocus())
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Select):
		return m.activate()
	}
	return m, nil
}

// run submits the editor contents. While a run is in flight the key does
// nothing; a missing selection or blank input still goes through so the
// operator sees why nothing was sent.
func (m Model) run() (tea.Model, tea.Cmd) {
	if m.exec.Status == execution.Pending || m.exec.Status == execution.Validating {
		return m, nil
	}
	m.notice = ""
	raw := m.input.Value()
	wb, ctx := m.wb, m.ctx
	return m, func() tea.Msg {
		s, applied := wb.Run(ctx, raw)
		return runDoneMsg{state: s, applied: applied}
	}
}

func (m Model) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusList:
		if len(m.algorithms) == 0 {
			return m, nil
		}
		alg, err := m.wb.Select(m.algorithms[m.cursor].ID)
		if err != nil {
			m.notice = apperror.Message(err)
			return m, nil
		}
		m.selected = &alg
		m.input.Placeholder = alg.Shape().Placeholder()
		return m, m.setFocus(focusInput)

	case focusHistory:
		if len(m.history) == 0 {
			return m, nil
		}
		id := m.history[m.historyCursor].ID
		wb, ctx := m.wb, m.ctx
		return m, func() tea.Msg {
			alg, raw, err := wb.Restore(ctx, id)
			return restoredMsg{algorithm: alg, raw: raw, err: err}
		}
	}
	return m, nil
}

// applyState takes a new execution snapshot, ignoring anything older than
// what is already shown.
func (m Model) applyState(s execution.State) (Model, tea.Cmd) {
	if s.Generation < m.exec.Generation {
		return m, nil
	}
	wasBusy := m.exec.Status == execution.Pending || m.exec.Status == execution.Validating
	m.exec = s
	busy := s.Status == execution.Pending || s.Status == execution.Validating
	if busy && !wasBusy {
		return m, m.spinner.Tick
	}
	return m, nil
}

// syncSelection keeps the selection consistent with a freshly loaded catalog.
func (m *Model) syncSelection() {
	if m.selected == nil {
		return
	}
	for _, a := range m.algorithms {
		if a.ID == m.selected.ID {
			m.selected = &a
			return
		}
	}
	m.selected = nil
	m.input.Placeholder = model.ShapeArray.Placeholder()
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case focusList:
		m.cursor = clamp(m.cursor+delta, 0, len(m.algorithms)-1)
	case focusHistory:
		m.historyCursor = clamp(m.historyCursor+delta, 0, len(m.history)-1)
	}
}

func (m *Model) moveCursorTo(id int) {
	for i, a := range m.algorithms {
		if a.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) nextFocus() focusArea {
	switch m.focus {
	case focusList:
		return focusInput
	case focusInput:
		if m.wb.HistoryEnabled() {
			return focusHistory
		}
		return focusList
	default:
		return focusList
	}
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// =============================================================================
// Commands
// =============================================================================

func (m Model) loadCatalog() tea.Cmd {
	wb, ctx := m.wb, m.ctx
	return func() tea.Msg {
		err := wb.LoadCatalog(ctx)
		return catalogLoadedMsg{algorithms: wb.Algorithms(), err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	if !m.wb.HistoryEnabled() {
		return nil
	}
	wb, ctx := m.wb, m.ctx
	return func() tea.Msg {
		runs, err := wb.Recent(ctx, historySize)
		return historyMsg{runs: runs, err: err}
	}
}

func (m Model) clearHistory() tea.Cmd {
	wb, ctx := m.wb, m.ctx
	return func() tea.Msg {
		n, err := wb.ClearHistory(ctx)
		return historyClearedMsg{removed: n, err: err}
	}
}

func (m Model) reset() tea.Cmd {
	wb := m.wb
	return func() tea.Msg {
		wb.Reset()
		return nil
	}
}

// selectedName is used in the result panel header.
func (m Model) selectedName() string {
	if m.exec.Algorithm != nil {
		return m.exec.Algorithm.Name
	}
	if m.selected != nil {
		return m.selected.Name
	}
	return ""
}

func trimLines(s string) string {
	return strings.TrimRight(s, "\n")
}
