package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/spacesedan/sentitable/internal/enrichment"
)

var ErrNotFound = errors.New("widget not found")

// Registry owns the widgets served by one host process.
type Registry struct {
	ctx         context.Context
	coordinator *enrichment.Coordinator
	store       StateStore

	mu      sync.RWMutex
	widgets map[string]*Widget
}

func NewRegistry(ctx context.Context, coordinator *enrichment.Coordinator, store StateStore) *Registry {
	return &Registry{
		ctx:         ctx,
		coordinator: coordinator,
		store:       store,
		widgets:     make(map[string]*Widget),
	}
}

func (r *Registry) Create() *Widget {
	w := New(r.ctx, uuid.NewString(), r.coordinator, r.store)

	r.mu.Lock()
	r.widgets[w.ID()] = w
	r.mu.Unlock()

	slog.Info("[Registry] Widget created", slog.String("widget_id", w.ID()))
	return w
}

// Get returns a live widget, or revives one from the state store.
func (r *Registry) Get(ctx context.Context, id string) (*Widget, error) {
	r.mu.RLock()
	w, ok := r.widgets[id]
	r.mu.RUnlock()
	if ok {
		return w, nil
	}

	if r.store == nil {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	w = New(r.ctx, id, r.coordinator, r.store)
	found, err := w.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore widget %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if live, ok := r.widgets[id]; ok {
		w.Close()
		return live, nil
	}
	r.widgets[id] = w
	slog.Info("[Registry] Widget restored", slog.String("widget_id", id))
	return w, nil
}

// Delete disposes a live widget and removes its persisted state. A widget
// known only to the state store is removed from the store.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	w, live := r.widgets[id]
	delete(r.widgets, id)
	r.mu.Unlock()

	if live {
		w.Close()
	}

	if r.store == nil {
		if !live {
			return ErrNotFound
		}
		return nil
	}

	if !live {
		_, found, err := r.store.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("delete widget %s: %w", id, err)
		}
		if !found {
			return ErrNotFound
		}
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete widget %s: %w", id, err)
	}
	slog.Info("[Registry] Widget deleted", slog.String("widget_id", id))
	return nil
}

// Close stops every widget's outstanding enrichment.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.widgets {
		w.Close()
	}
}
