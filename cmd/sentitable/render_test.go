package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spacesedan/sentitable/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewBinding = `{
	"state": "success",
	"metadata": {
		"dimensions": {"d1": {"description": "Review"}},
		"mainStructureMembers": {"m1": {"description": "Score"}}
	},
	"data": [
		{"d1": {"label": "Great product"}, "m1": {"formatted": "5"}},
		{"d1": {"label": "Bad"}, "m1": {"formatted": "1"}}
	]
}`

func writeBinding(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "binding.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func TestRenderJSONWithVader(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	var out bytes.Buffer
	err := render(context.Background(), renderParams{
		bindingPath: writeBinding(t, reviewBinding),
		provider:    "vader",
		format:      formatJSON,
		wait:        5 * time.Second,
		logLevel:    "error",
	}, &out)
	require.NoError(t, err)

	var snap table.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Zero(t, snap.Pending)
	assert.Equal(t, [][]string{
		{"Great product", "5", "Positive"},
		{"Bad", "1", "Negative"},
	}, snap.Rows)
}

func TestRenderMissingKey(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	var out bytes.Buffer
	err := render(context.Background(), renderParams{
		bindingPath: writeBinding(t, reviewBinding),
		format:      formatText,
		wait:        time.Second,
		logLevel:    "error",
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Sentiment Analysis")
	assert.Contains(t, out.String(), "API key missing")
}

func TestRenderRejectsUnreadyBinding(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	err := render(context.Background(), renderParams{
		bindingPath: writeBinding(t, `{"state":"pending"}`),
		provider:    "vader",
		format:      formatText,
		logLevel:    "error",
	}, &bytes.Buffer{})
	assert.Error(t, err)

	err = render(context.Background(), renderParams{
		bindingPath: filepath.Join(t.TempDir(), "missing.json"),
		format:      formatText,
		logLevel:    "error",
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRenderCommandRejectsUnknownFormat(t *testing.T) {
	cmd := newRenderCommand()
	cmd.SetArgs([]string{"--binding", writeBinding(t, reviewBinding), "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestExecuteReportsErrorsOnStderr(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	missing := filepath.Join(t.TempDir(), "missing.json")

	root := newRootCommand()
	root.SetArgs([]string{"render", "--binding", missing, "--log-level", "error"})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)

	assert.Equal(t, 1, execute(root, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "read binding")
	assert.Contains(t, stderr.String(), "missing.json")
}

func TestExecuteSucceeds(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	root := newRootCommand()
	root.SetArgs([]string{"render", "--binding", writeBinding(t, reviewBinding), "--provider", "vader", "--format", "json", "--log-level", "error"})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)

	assert.Equal(t, 0, execute(root, &stderr))
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), "Sentiment Analysis")
}
