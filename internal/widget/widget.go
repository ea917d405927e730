// Package widget is the lifecycle shell around one rendered table. Hosts call
// OnResize and OnAfterUpdate; both rebuild the view from the current binding.
package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/sentitable/internal/binding"
	"github.com/spacesedan/sentitable/internal/enrichment"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/spacesedan/sentitable/internal/table"
)

const storeTimeout = 3 * time.Second

type StateStore interface {
	Save(ctx context.Context, id string, state models.WidgetState) error
	Load(ctx context.Context, id string) (models.WidgetState, bool, error)
	Delete(ctx context.Context, id string) error
}

type Widget struct {
	id          string
	base        context.Context
	coordinator *enrichment.Coordinator
	store       StateStore

	mu         sync.Mutex
	apiKey     string
	binding    *models.DataBinding
	width      int
	height     int
	view       *table.Table
	generation uint64
	cancel     context.CancelFunc
}

// New creates a widget whose enrichment tasks live under ctx. store may be nil.
func New(ctx context.Context, id string, coordinator *enrichment.Coordinator, store StateStore) *Widget {
	return &Widget{
		id:          id,
		base:        ctx,
		coordinator: coordinator,
		store:       store,
	}
}

func (w *Widget) ID() string {
	return w.id
}

func (w *Widget) SetAPIKey(key string) {
	w.mu.Lock()
	w.apiKey = key
	w.mu.Unlock()
}

func (w *Widget) APIKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.apiKey
}

// SetDataBinding replaces the binding. It does not render; the host follows
// up with OnAfterUpdate.
func (w *Widget) SetDataBinding(b *models.DataBinding) {
	w.mu.Lock()
	w.binding = b
	state := w.stateLocked()
	w.mu.Unlock()

	w.persist(state)
}

func (w *Widget) OnResize(width, height int) bool {
	w.mu.Lock()
	w.width, w.height = width, height
	state := w.stateLocked()
	w.mu.Unlock()

	w.persist(state)
	return w.Render()
}

// OnAfterUpdate re-renders; the changed property names are informational.
func (w *Widget) OnAfterUpdate(changed map[string]any) bool {
	if len(changed) > 0 {
		names := make([]string, 0, len(changed))
		for k := range changed {
			names = append(names, k)
		}
		slog.Debug("[Widget] Properties changed",
			slog.String("widget_id", w.id),
			slog.Any("props", names))
	}
	return w.Render()
}

// Render rebuilds the view and starts enrichment for it. It reports false and
// leaves the current view alone when the binding is not ready, lacks a
// dimension or measure, or a row is missing a selected field.
func (w *Widget) Render() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.binding.Ready() {
		slog.Debug("[Widget] Binding not ready, skipping render", slog.String("widget_id", w.id))
		return false
	}

	dimensions, measures := binding.Normalize(w.binding.Metadata)
	if len(dimensions) == 0 || len(measures) == 0 {
		slog.Debug("[Widget] Binding has no dimension or measure, skipping render",
			slog.String("widget_id", w.id),
			slog.Int("dimensions", len(dimensions)),
			slog.Int("measures", len(measures)))
		return false
	}

	next, err := table.Build(w.generation+1, dimensions[0], measures[0], w.binding.Data)
	if err != nil {
		slog.Warn("[Widget] Binding rows do not match metadata, skipping render",
			slog.String("widget_id", w.id),
			slog.String("error", err.Error()))
		return false
	}

	// Retire first so a task that already passed its cancellation check
	// still cannot write into the outgoing table.
	if w.view != nil {
		w.view.Retire()
	}
	if w.cancel != nil {
		w.cancel()
	}

	ctx, cancel := context.WithCancel(w.base)
	w.generation++
	w.view = next
	w.cancel = cancel

	slog.Info("[Widget] Rendered",
		slog.String("widget_id", w.id),
		slog.Uint64("generation", w.generation),
		slog.Int("rows", next.Len()))

	w.coordinator.Enrich(ctx, enrichment.Job{
		WidgetID:   w.id,
		Table:      next,
		Credential: w.apiKey,
	})
	return true
}

func (w *Widget) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// View is the visible table, nil before the first successful render.
func (w *Widget) View() *table.Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

func (w *Widget) Snapshot() table.Snapshot {
	view := w.View()
	if view == nil {
		return table.Snapshot{Header: []string{}, Rows: [][]string{}}
	}
	return view.Snapshot()
}

// Restore loads persisted state and renders it. It reports whether any state
// was found.
func (w *Widget) Restore(ctx context.Context) (bool, error) {
	if w.store == nil {
		return false, nil
	}
	state, ok, err := w.store.Load(ctx, w.id)
	if err != nil || !ok {
		return false, err
	}

	w.mu.Lock()
	w.width, w.height = state.Width, state.Height
	w.binding = state.Binding
	w.mu.Unlock()

	w.Render()
	return true, nil
}

// Close cancels outstanding enrichment and detaches the view.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.view != nil {
		w.view.Retire()
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Widget) stateLocked() models.WidgetState {
	return models.WidgetState{Width: w.width, Height: w.height, Binding: w.binding}
}

func (w *Widget) persist(state models.WidgetState) {
	if w.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.base), storeTimeout)
	defer cancel()

	if err := w.store.Save(ctx, w.id, state); err != nil {
		slog.Warn("[Widget] Failed to persist state",
			slog.String("widget_id", w.id),
			slog.String("error", err.Error()))
	}
}
