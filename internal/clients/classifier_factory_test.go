package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassifier(t *testing.T) {
	cases := []struct {
		provider  string
		name      string
		needsKey  bool
		withProbe bool
	}{
		{"", "gemini:gemini-1.5-flash", true, true},
		{"gemini", "gemini:gemini-1.5-flash", true, true},
		{"genai", "genai:gemini-1.5-flash", true, true},
		{"openai", "openai:gpt-4o-mini", true, false},
		{"vader", "vader", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			c, probe, err := NewClassifier(ClassifierOptions{Provider: tc.provider})
			require.NoError(t, err)
			assert.Equal(t, tc.name, c.Name())
			assert.Equal(t, tc.needsKey, c.NeedsCredential())
			assert.Equal(t, tc.withProbe, probe != nil)
		})
	}

	_, _, err := NewClassifier(ClassifierOptions{Provider: "bart"})
	assert.Error(t, err)
}
