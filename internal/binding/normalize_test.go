package binding

import (
	"encoding/json"
	"testing"

	"github.com/spacesedan/sentitable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMetadata(t *testing.T, raw string) models.Metadata {
	t.Helper()
	var meta models.Metadata
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))
	return meta
}

func keys(ds []models.FieldDescriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Key)
	}
	return out
}

func TestNormalizeKeepsDocumentOrder(t *testing.T) {
	meta := decodeMetadata(t, `{
		"dimensions": {
			"zeta":  {"description": "Review"},
			"alpha": {"description": "Product"},
			"mid":   {"description": "Region"}
		},
		"mainStructureMembers": {
			"m9": {"description": "Score"},
			"m1": {"description": "Count"}
		}
	}`)

	dims, measures := Normalize(meta)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys(dims))
	assert.Equal(t, []string{"m9", "m1"}, keys(measures))
	assert.Equal(t, "Review", dims[0].Label)
	assert.Equal(t, "Score", measures[0].Label)
}

func TestNormalizeMissingMappings(t *testing.T) {
	meta := decodeMetadata(t, `{"dimensions": {"d1": {"description": "Review"}}}`)

	dims, measures := Normalize(meta)

	assert.Len(t, dims, 1)
	assert.Empty(t, measures)

	dims, measures = Normalize(models.Metadata{})
	assert.Empty(t, dims)
	assert.Empty(t, measures)
}

func TestNormalizeLabelFallback(t *testing.T) {
	var meta models.Metadata
	meta.Dimensions.Set("d1", models.FieldFragment{ID: "Review_ID"})
	meta.Dimensions.Set("d2", models.FieldFragment{})

	dims, _ := Normalize(meta)

	require.Len(t, dims, 2)
	assert.Equal(t, "Review_ID", dims[0].Label)
	assert.Equal(t, "d2", dims[1].Label)
}

func TestNormalizeKeepsExtraAttributes(t *testing.T) {
	meta := decodeMetadata(t, `{
		"dimensions": {"d1": {"description": "Review", "type": "string"}},
		"mainStructureMembers": {"m1": {"description": "Score", "unitOfMeasure": "pts"}}
	}`)

	dims, measures := Normalize(meta)

	assert.Equal(t, "string", dims[0].Attributes["type"])
	assert.Equal(t, "pts", measures[0].Attributes["unitOfMeasure"])
}

func TestDuplicateKeyKeepsFirstPosition(t *testing.T) {
	meta := decodeMetadata(t, `{
		"dimensions": {
			"a": {"description": "first"},
			"b": {"description": "B"},
			"a": {"description": "second"}
		}
	}`)

	dims, _ := Normalize(meta)

	assert.Equal(t, []string{"a", "b"}, keys(dims))
	assert.Equal(t, "second", dims[0].Label)
}

func TestFieldMapRejectsNonObject(t *testing.T) {
	var meta models.Metadata
	err := json.Unmarshal([]byte(`{"dimensions": ["d1"]}`), &meta)
	assert.Error(t, err)
}
