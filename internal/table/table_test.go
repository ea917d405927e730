package table

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spacesedan/sentitable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	review = models.FieldDescriptor{Key: "d1", Label: "Review"}
	score  = models.FieldDescriptor{Key: "m1", Label: "Score"}
)

func reviewRows() []models.DataRow {
	return []models.DataRow{
		{"d1": {Label: "Great product"}, "m1": {Formatted: "5"}},
		{"d1": {Label: "Bad"}, "m1": {Formatted: "1"}},
	}
}

func TestBuildSkeleton(t *testing.T) {
	tbl, err := Build(1, review, score, reviewRows())
	require.NoError(t, err)

	snap := tbl.Snapshot()
	assert.Equal(t, []string{"Review", "Score", "Sentiment Analysis"}, snap.Header)
	assert.Equal(t, [][]string{
		{"Great product", "5", "Loading..."},
		{"Bad", "1", "Loading..."},
	}, snap.Rows)
	assert.Equal(t, 2, snap.Pending)
	assert.Equal(t, uint64(1), snap.Generation)
}

func TestBuildEmptyData(t *testing.T) {
	tbl, err := Build(1, review, score, nil)
	require.NoError(t, err)

	assert.Len(t, tbl.Header(), 3)
	assert.Zero(t, tbl.Len())
	assert.Zero(t, tbl.Pending())
}

func TestBuildMissingField(t *testing.T) {
	rows := reviewRows()
	delete(rows[1], "m1")

	_, err := Build(1, review, score, rows)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), "row 1")
}

func TestSetEnrichmentSettlesOnce(t *testing.T) {
	tbl, err := Build(1, review, score, reviewRows())
	require.NoError(t, err)

	assert.True(t, tbl.SetEnrichment(0, "Positive"))
	assert.False(t, tbl.SetEnrichment(0, "Negative"))
	assert.False(t, tbl.SetEnrichment(5, "Neutral"))
	assert.False(t, tbl.SetEnrichment(-1, "Neutral"))

	snap := tbl.Snapshot()
	assert.Equal(t, "Positive", snap.Rows[0][2])
	assert.Equal(t, "Loading...", snap.Rows[1][2])
	assert.Equal(t, 1, snap.Pending)
}

func TestRetiredTableRejectsWrites(t *testing.T) {
	tbl, err := Build(1, review, score, reviewRows())
	require.NoError(t, err)

	tbl.Retire()

	assert.True(t, tbl.Retired())
	assert.False(t, tbl.SetEnrichment(0, "Positive"))
	assert.Equal(t, "Loading...", tbl.Snapshot().Rows[0][2])
}

func TestConcurrentWrites(t *testing.T) {
	data := make([]models.DataRow, 100)
	for i := range data {
		data[i] = models.DataRow{"d1": {Label: "r"}, "m1": {Formatted: "0"}}
	}
	tbl, err := Build(1, review, score, data)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < tbl.Len(); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl.SetEnrichment(i, "Neutral")
			_ = tbl.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Zero(t, tbl.Pending())
}

func TestHTMLEscapesUpstreamText(t *testing.T) {
	tbl, err := Build(1,
		models.FieldDescriptor{Key: "d1", Label: "<b>Review</b>"},
		score,
		[]models.DataRow{{"d1": {Label: `<script>alert("x")</script>`}, "m1": {Formatted: "5 & up"}}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, HTML(tbl.Snapshot()).Render(context.Background(), &buf))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "5 &amp; up")
	assert.Contains(t, out, "<th>Sentiment Analysis</th>")
	assert.Equal(t, 2, strings.Count(out, "<tr>"))
}

func TestWriteText(t *testing.T) {
	tbl, err := Build(1, review, score, reviewRows())
	require.NoError(t, err)
	tbl.SetEnrichment(0, "Positive")

	var buf bytes.Buffer
	WriteText(&buf, tbl.Snapshot())
	out := buf.String()

	assert.Contains(t, out, "Review")
	assert.Contains(t, out, "Sentiment Analysis")
	assert.Contains(t, out, "Great product")
	assert.Contains(t, out, "Positive")
	assert.Contains(t, out, "Loading...")
}
