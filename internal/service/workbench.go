// Package service contains the application layer that sits between the
// terminal UI and the core packages.
//
// THE LAYERS:
//
//	tui (presentation)   → key presses, rendering
//	service (workbench)  → selection, run + record, history
//	core                 → catalog, encoder, execution client, presenter
//	repository           → run history storage
//
// The UI never talks to the execution client or the database directly. That
// keeps the rules ("a superseded run is not recorded", "a reload that drops
// the selected algorithm clears the selection") in one place, testable with
// plain function calls and no terminal.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/catalog"
	"github.com/sakif/algotest/internal/execution"
	"github.com/sakif/algotest/internal/model"
	"github.com/sakif/algotest/internal/presenter"
	"github.com/sakif/algotest/internal/repository"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Workbench is the operator's session: one catalog, one selection, one
// execution client, and an optional run history.
type Workbench struct {
	catalog   *catalog.Catalog
	exec      *execution.Client
	presenter *presenter.Presenter
	history   repository.RunRepository // nil when history is disabled
	logger    *slog.Logger

	mu       sync.RWMutex
	selected *model.Algorithm
}

// NewWorkbench wires the session together. history may be nil.
func NewWorkbench(
	cat *catalog.Catalog,
	exec *execution.Client,
	pres *presenter.Presenter,
	history repository.RunRepository,
	logger *slog.Logger,
) *Workbench {
	return &Workbench{
		catalog:   cat,
		exec:      exec,
		presenter: pres,
		history:   history,
		logger:    logger,
	}
}

// LoadCatalog (re)loads the catalog. A selection that is no longer offered
// is cleared; one that still exists picks up the fresh descriptor.
func (w *Workbench) LoadCatalog(ctx context.Context) error {
	err := w.catalog.Load(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selected == nil {
		return err
	}
	fresh, lookupErr := w.catalog.Lookup(w.selected.ID)
	if lookupErr != nil {
		w.logger.Info("selected algorithm no longer offered",
			slog.Int("algorithm_id", w.selected.ID),
		)
		w.selected = nil
		return err
	}
	w.selected = &fresh
	return err
}

// Algorithms returns the catalog in server order.
func (w *Workbench) Algorithms() []model.Algorithm {
	return w.catalog.List()
}

// CatalogErr returns the last catalog load failure, or nil.
func (w *Workbench) CatalogErr() error {
	return w.catalog.Err()
}

// Select makes the algorithm with the given id the current selection.
func (w *Workbench) Select(id int) (model.Algorithm, error) {
	alg, err := w.catalog.Lookup(id)
	if err != nil {
		return model.Algorithm{}, err
	}

	w.mu.Lock()
	w.selected = &alg
	w.mu.Unlock()

	return alg, nil
}

// Selected returns the current selection.
func (w *Workbench) Selected() (model.Algorithm, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.selected == nil {
		return model.Algorithm{}, false
	}
	return *w.selected, true
}

// State returns the execution client's current snapshot.
func (w *Workbench) State() execution.State {
	return w.exec.State()
}

// Subscribe forwards to execution.Client.Subscribe; the same rules apply.
func (w *Workbench) Subscribe(fn func(execution.State)) {
	w.exec.Subscribe(fn)
}

// Reset clears the visible result or error and abandons any run in flight.
func (w *Workbench) Reset() {
	w.exec.Reset()
}

// Present renders a state's result for display.
func (w *Workbench) Present(s execution.State) presenter.View {
	return w.presenter.Present(s.Result)
}

// Run submits raw against the current selection and returns the submission's
// final state. A resolved submission that is still the latest one when it
// resolves is appended to the history; a superseded one is not.
func (w *Workbench) Run(ctx context.Context, raw string) (execution.State, bool) {
	var alg *model.Algorithm
	if a, ok := w.Selected(); ok {
		alg = &a
	}

	final, applied := w.exec.Submit(ctx, alg, raw)
	if applied {
		w.record(ctx, final)
	}
	return final, applied
}

// record stores a resolved submission. A history failure is logged, never
// surfaced: the run itself succeeded or failed on its own terms.
func (w *Workbench) record(ctx context.Context, s execution.State) {
	if w.history == nil || s.Algorithm == nil || !s.Status.Resolved() {
		return
	}

	view := w.presenter.Present(s.Result)
	run := &model.RunRecord{
		AlgorithmID:   s.Algorithm.ID,
		AlgorithmName: s.Algorithm.Name,
		RawInput:      s.RawInput,
		Input:         view.Input,
		Output:        view.Result,
		ExecutionTime: view.ExecutionTime,
	}
	if s.Status == execution.Succeeded {
		run.Status = model.RunSucceeded
	} else {
		run.Status = model.RunFailed
		run.Error = s.Reason()
	}

	// The run's own context may already be cancelled by the time it
	// resolves; the history write should still happen.
	if err := w.history.Create(context.WithoutCancel(ctx), run); err != nil {
		w.logger.Warn("failed to record run",
			slog.Int("algorithm_id", run.AlgorithmID),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Debug("run recorded", slog.String("id", run.ID))
}

// HistoryEnabled reports whether runs are being recorded.
func (w *Workbench) HistoryEnabled() bool {
	return w.history != nil
}

// Recent returns up to limit runs, newest first. With history disabled it
// returns nothing.
func (w *Workbench) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if w.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	runs, err := w.history.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		w.logger.Error("failed to list runs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Restore loads a past run, selects its algorithm and returns the raw input
// to put back in the editor. It fails with ErrNotFound when the run or its
// algorithm no longer exists.
func (w *Workbench) Restore(ctx context.Context, id string) (model.Algorithm, string, error) {
	if w.history == nil {
		return model.Algorithm{}, "", apperror.NotFound("run", id)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Algorithm{}, "", apperror.ValidationFailed("id", "run ID is required")
	}

	run, err := w.history.GetByID(ctx, id)
	if err != nil {
		return model.Algorithm{}, "", err
	}

	alg, err := w.Select(run.AlgorithmID)
	if err != nil {
		return model.Algorithm{}, "", err
	}
	return alg, run.RawInput, nil
}

// ClearHistory deletes every recorded run.
func (w *Workbench) ClearHistory(ctx context.Context) (int64, error) {
	if w.history == nil {
		return 0, nil
	}
	n, err := w.history.Clear(ctx)
	if err != nil {
		w.logger.Error("failed to clear history", slog.String("error", err.Error()))
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	w.logger.Info("history cleared", slog.Int64("removed", n))
	return n, nil
}
