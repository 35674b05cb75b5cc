package tui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/catalog"
	"github.com/sakif/algotest/internal/execution"
	"github.com/sakif/algotest/internal/fakeapi"
	"github.com/sakif/algotest/internal/model"
	"github.com/sakif/algotest/internal/presenter"
	"github.com/sakif/algotest/internal/repository"
	"github.com/sakif/algotest/internal/repository/sqlite"
	"github.com/sakif/algotest/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubFetcher struct {
	algorithms []model.Algorithm
	err        error
}

func (s *stubFetcher) FetchAlgorithms(context.Context) ([]model.Algorithm, error) {
	return s.algorithms, s.err
}

// fakeRunner answers through the stand-in service's default responder, so
// results look exactly like the real thing without any HTTP.
type fakeRunner struct {
	calls int
}

func (r *fakeRunner) RunAlgorithm(_ context.Context, p model.Payload) (*model.ExecutionResult, error) {
	r.calls++
	req := p.Request()
	input, err := jsonRaw(req.Input)
	if err != nil {
		return nil, err
	}
	alg := model.Algorithm{ID: req.AlgorithmID, Name: "stand-in", InputShape: p.Shape()}
	reply := fakeapi.DefaultResponder(alg, fakeapi.RunRequest{AlgorithmID: req.AlgorithmID, Input: input})
	if reply.Status >= 300 {
		return nil, apperror.ExecutionRequest(reply.Status, "", nil)
	}
	return decodeResult(reply.Body)
}

func jsonRaw(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

func decodeResult(body any) (*model.ExecutionResult, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var res model.ExecutionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type harness struct {
	fetcher *stubFetcher
	runner  *fakeRunner
	wb      *service.Workbench
}

func newHarness(t *testing.T, withHistory bool) *harness {
	t.Helper()
	h := &harness{
		fetcher: &stubFetcher{algorithms: fakeapi.DefaultCatalog()},
		runner:  &fakeRunner{},
	}
	var history repository.RunRepository
	if withHistory {
		db, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		history = db
	}
	h.wb = service.NewWorkbench(
		catalog.New(h.fetcher, discard),
		execution.NewClient(h.runner, discard),
		presenter.New(time.UTC, nil),
		history,
		discard,
	)
	return h
}

// send feeds one message through Update.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// settle runs cmd and feeds every resulting message back into the model.
// Only use it on commands that complete immediately.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = settle(t, m, c)
		}
		return m
	default:
		m, next := send(t, m, msg)
		// Follow-ups from data messages (history refresh after a run).
		if _, isRun := msg.(runDoneMsg); isRun {
			return settle(t, m, next)
		}
		return m
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyRun   = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyCtrlL = tea.KeyMsg{Type: tea.KeyCtrlL}
)

func started(t *testing.T, h *harness) Model {
	t.Helper()
	m := New(context.Background(), h.wb)
	return settle(t, m, m.Init())
}

// =============================================================================
// Catalog
// =============================================================================

func TestInit_LoadsCatalog(t *testing.T) {
	m := started(t, newHarness(t, false))

	assert.False(t, m.catalogLoading)
	assert.Len(t, m.algorithms, 4)

	view := m.View()
	assert.Contains(t, view, "Bubble Sort")
	assert.Contains(t, view, "Binary Search")
	assert.Contains(t, view, "Sorting")
}

func TestInit_CatalogFailureShown(t *testing.T) {
	h := newHarness(t, false)
	h.fetcher.err = apperror.CatalogFetch(500, nil)

	m := started(t, h)

	assert.Empty(t, m.algorithms)
	assert.Contains(t, m.View(), apperror.MsgCatalogFetch)
}

func TestReload_DropsVanishedSelection(t *testing.T) {
	h := newHarness(t, false)
	m := started(t, h)
	m, _ = send(t, m, keyEnter)
	require.NotNil(t, m.selected)
	require.Equal(t, 1, m.selected.ID)

	h.fetcher.algorithms = fakeapi.DefaultCatalog()[1:]
	m, cmd := send(t, m, keyCtrlL)
	assert.True(t, m.catalogLoading)
	m = settle(t, m, cmd)

	assert.Nil(t, m.selected)
	assert.Len(t, m.algorithms, 3)
}

// =============================================================================
// Running
// =============================================================================

func TestSelectTypeRun(t *testing.T) {
	h := newHarness(t, false)
	m := started(t, h)

	m, _ = send(t, m, keyEnter) // select Bubble Sort, focus moves to the editor
	require.Equal(t, focusInput, m.focus)

	m, _ = send(t, m, keyRunes("5,2,8,1"))
	assert.Equal(t, "5,2,8,1", m.input.Value())

	m, cmd := send(t, m, keyRun)
	require.NotNil(t, cmd)
	m = settle(t, m, cmd)

	assert.Equal(t, execution.Succeeded, m.exec.Status)
	view := m.View()
	assert.Contains(t, view, "1, 2, 5, 8")
	assert.Contains(t, view, "Result: Bubble Sort")
	assert.Equal(t, 1, h.runner.calls)
}

func TestRun_SearchShapePlaceholderAndResult(t *testing.T) {
	h := newHarness(t, false)
	m := started(t, h)

	m, _ = send(t, m, keyDown)
	m, _ = send(t, m, keyDown)
	m, _ = send(t, m, keyEnter)
	require.Equal(t, catalog.BinarySearchID, m.selected.ID)
	assert.Equal(t, model.ShapeArraySearch.Placeholder(), m.input.Placeholder)
	assert.Contains(t, m.View(), model.ShapeArraySearch.Hint())

	m.input.SetValue("1,3,5,7\n5")
	m, cmd := send(t, m, keyRun)
	m = settle(t, m, cmd)

	require.Equal(t, execution.Succeeded, m.exec.Status)
	assert.Contains(t, m.View(), `"found":true`)
}

func TestRun_WithoutSelectionShowsReason(t *testing.T) {
	h := newHarness(t, false)
	m := started(t, h)

	m, cmd := send(t, m, keyRun)
	m = settle(t, m, cmd)

	assert.Equal(t, execution.Failed, m.exec.Status)
	assert.Contains(t, m.View(), apperror.MsgMissingSelectionOrInput)
	assert.Zero(t, h.runner.calls)
}

func TestRun_IgnoredWhilePending(t *testing.T) {
	m := started(t, newHarness(t, false))

	m, _ = send(t, m, StateMsg{State: execution.State{Status: execution.Pending, Generation: 1}})
	assert.Contains(t, m.View(), "Running...")

	_, cmd := send(t, m, keyRun)
	assert.Nil(t, cmd)
}

func TestStateMsg_OlderGenerationIgnored(t *testing.T) {
	m := started(t, newHarness(t, false))

	m, _ = send(t, m, StateMsg{State: execution.State{Status: execution.Succeeded, Generation: 2}})
	m, _ = send(t, m, StateMsg{State: execution.State{Status: execution.Pending, Generation: 1}})

	assert.Equal(t, execution.Succeeded, m.exec.Status)
	assert.Equal(t, uint64(2), m.exec.Generation)
}

func TestPendingStartsSpinner(t *testing.T) {
	m := started(t, newHarness(t, false))

	_, cmd := send(t, m, StateMsg{State: execution.State{Status: execution.Pending, Generation: 1}})
	assert.NotNil(t, cmd, "entering Pending schedules a spinner tick")
}

// =============================================================================
// History
// =============================================================================

func TestHistory_RecordsAndRestores(t *testing.T) {
	h := newHarness(t, true)
	m := started(t, h)

	m, _ = send(t, m, keyEnter)
	m, _ = send(t, m, keyRunes("9,4,7"))
	m, cmd := send(t, m, keyRun)
	m = settle(t, m, cmd)

	require.Len(t, m.history, 1)
	assert.Equal(t, "9,4,7", m.history[0].RawInput)
	assert.Contains(t, m.View(), "Recent runs")

	// Clear the editor, move to the history panel, restore.
	m.input.SetValue("")
	m, _ = send(t, m, keyTab)
	require.Equal(t, focusHistory, m.focus)

	m, cmd = send(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, "9,4,7", m.input.Value())
	assert.Equal(t, focusInput, m.focus)
	assert.Contains(t, m.notice, "Bubble Sort")
}

func TestHistory_Clear(t *testing.T) {
	h := newHarness(t, true)
	m := started(t, h)
	m, _ = send(t, m, keyEnter)
	m, _ = send(t, m, keyRunes("2,1"))
	m, cmd := send(t, m, keyRun)
	m = settle(t, m, cmd)
	require.NotEmpty(t, m.history)

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	m = settle(t, m, cmd)

	assert.Empty(t, m.history)
	assert.Equal(t, "History cleared", m.notice)
}

func TestHistory_DisabledSkipsPanel(t *testing.T) {
	m := started(t, newHarness(t, false))

	assert.NotContains(t, m.View(), "Recent runs")

	m, _ = send(t, m, keyTab) // list → input
	m, _ = send(t, m, keyTab) // input → list, no history panel to visit
	assert.Equal(t, focusList, m.focus)
}

// =============================================================================
// Styles
// =============================================================================

func TestBadgeColours(t *testing.T) {
	assert.Equal(t, colorBlue, CategoryColor("Sorting"))
	assert.Equal(t, colorPurple, CategoryColor("search"))
	assert.Equal(t, colorOrange, CategoryColor("Graph"))
	assert.Equal(t, colorGrey, CategoryColor("Dynamic Programming"))

	assert.Equal(t, colorGreen, DifficultyColor("Easy"))
	assert.Equal(t, colorYellow, DifficultyColor("Medium"))
	assert.Equal(t, colorRed, DifficultyColor("HARD"))
	assert.Equal(t, colorGrey, DifficultyColor(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "1,2 ⏎ 3", oneLine("1,2\n3\n"))
}
