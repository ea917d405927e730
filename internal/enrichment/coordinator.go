// Package enrichment drives per-row classification for a rendered table.
package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/spacesedan/sentitable/internal/table"
	"golang.org/x/sync/semaphore"
)

// Classifier labels a single text. Implementations never fail; problems come
// back as sentinel strings.
type Classifier interface {
	Name() string
	NeedsCredential() bool
	Classify(ctx context.Context, text, credential string) string
}

// ResultSink receives every result that settled a visible cell.
type ResultSink interface {
	Record(ctx context.Context, result models.EnrichmentResult)
}

type Job struct {
	WidgetID   string
	Table      *table.Table
	Credential string
}

type Coordinator struct {
	classifier Classifier
	sem        *semaphore.Weighted
	sinks      []ResultSink
	wg         sync.WaitGroup
}

type Option func(*Coordinator)

// WithMaxConcurrency bounds in-flight classifications across all widgets.
// Zero or less leaves fan-out unbounded.
func WithMaxConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithSinks(sinks ...ResultSink) Option {
	return func(c *Coordinator) {
		c.sinks = append(c.sinks, sinks...)
	}
}

func NewCoordinator(classifier Classifier, opts ...Option) *Coordinator {
	c := &Coordinator{classifier: classifier}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich starts one independent task per row and returns without waiting.
// Rows without a usable credential settle synchronously to the missing key
// sentinel. Results arriving after ctx is cancelled, or after the table was
// retired, are dropped.
func (c *Coordinator) Enrich(ctx context.Context, job Job) {
	needsKey := c.classifier.NeedsCredential()

	for i := 0; i < job.Table.Len(); i++ {
		if needsKey && job.Credential == "" {
			job.Table.SetEnrichment(i, models.SentinelMissingCredential)
			continue
		}

		c.wg.Add(1)
		go c.enrichRow(ctx, job, i)
	}
}

func (c *Coordinator) enrichRow(ctx context.Context, job Job, i int) {
	defer c.wg.Done()

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer c.sem.Release(1)
	}

	text := job.Table.DimensionText(i)
	label := c.classifier.Classify(ctx, text, job.Credential)

	if ctx.Err() != nil || !job.Table.SetEnrichment(i, label) {
		slog.Debug("[Coordinator] Discarded stale enrichment",
			slog.String("widget_id", job.WidgetID),
			slog.Uint64("generation", job.Table.Generation()),
			slog.Int("row", i))
		return
	}

	if len(c.sinks) == 0 || ctx.Err() != nil || job.Table.Retired() {
		return
	}
	result := models.EnrichmentResult{
		ResultID:   uuid.NewString(),
		WidgetID:   job.WidgetID,
		Generation: job.Table.Generation(),
		Row:        i,
		Text:       text,
		Label:      label,
		Provider:   c.classifier.Name(),
		SettledAt:  time.Now().UTC(),
	}
	sinkCtx := context.WithoutCancel(ctx)
	for _, sink := range c.sinks {
		sink.Record(sinkCtx, result)
	}
}

// Wait blocks until every task started so far has finished. Used on shutdown.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
