// Package table holds the rendered widget view: a fixed three column header and
// one row per data row, each with an enrichment cell that settles later.
package table

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spacesedan/sentitable/internal/models"
)

const (
	SentimentHeader = "Sentiment Analysis"
	Placeholder     = "Loading..."
)

var ErrMissingField = errors.New("row is missing selected field")

type row struct {
	dimension  string
	measure    string
	enrichment string
	settled    bool
}

// Table is safe for concurrent use. Once retired it rejects enrichment writes.
type Table struct {
	mu         sync.RWMutex
	generation uint64
	header     [3]string
	rows       []row
	pending    int
	retired    bool
}

// Build lays out the skeleton for dimension and measure. Every data row must
// carry both keys; nothing is built otherwise.
func Build(generation uint64, dimension, measure models.FieldDescriptor, data []models.DataRow) (*Table, error) {
	t := &Table{
		generation: generation,
		header:     [3]string{dimension.Label, measure.Label, SentimentHeader},
		rows:       make([]row, 0, len(data)),
	}

	for i, d := range data {
		dim, ok := d[dimension.Key]
		if !ok {
			return nil, fmt.Errorf("row %d, dimension %q: %w", i, dimension.Key, ErrMissingField)
		}
		m, ok := d[measure.Key]
		if !ok {
			return nil, fmt.Errorf("row %d, measure %q: %w", i, measure.Key, ErrMissingField)
		}
		t.rows = append(t.rows, row{
			dimension:  dim.Label,
			measure:    m.Formatted,
			enrichment: Placeholder,
		})
	}
	t.pending = len(t.rows)

	return t, nil
}

func (t *Table) Generation() uint64 {
	return t.generation
}

func (t *Table) Header() []string {
	return t.header[:]
}

func (t *Table) Len() int {
	return len(t.rows)
}

// DimensionText is the raw text of row i, the input for enrichment.
func (t *Table) DimensionText(i int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows[i].dimension
}

// SetEnrichment settles row i. It reports false when the table is retired,
// the index is out of range, or the cell already settled.
func (t *Table) SetEnrichment(i int, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.retired || i < 0 || i >= len(t.rows) || t.rows[i].settled {
		return false
	}
	t.rows[i].enrichment = value
	t.rows[i].settled = true
	t.pending--
	return true
}

// Retire detaches the table from the visible widget.
func (t *Table) Retire() {
	t.mu.Lock()
	t.retired = true
	t.mu.Unlock()
}

func (t *Table) Retired() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.retired
}

// Pending counts enrichment cells still showing the placeholder.
func (t *Table) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending
}

type Snapshot struct {
	Generation uint64     `json:"generation"`
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
	Pending    int        `json:"pending"`
}

func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, []string{r.dimension, r.measure, r.enrichment})
	}
	return Snapshot{
		Generation: t.generation,
		Header:     append([]string(nil), t.header[:]...),
		Rows:       rows,
		Pending:    t.pending,
	}
}
