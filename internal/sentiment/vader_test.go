package sentiment

import (
	"context"
	"testing"

	"github.com/spacesedan/sentitable/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVaderClassifierLabels(t *testing.T) {
	c := VaderClassifier{}
	ctx := context.Background()

	assert.Equal(t, models.LabelPositive, c.Classify(ctx, "I love this product, it is great and wonderful!", ""))
	assert.Equal(t, models.LabelNegative, c.Classify(ctx, "This is terrible, awful and I hate it.", ""))
	assert.Equal(t, models.LabelNeutral, c.Classify(ctx, "The box is blue.", ""))
	assert.False(t, c.NeedsCredential())
}

func TestVaderClassifierCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, models.SentinelClassifyError, VaderClassifier{}.Classify(ctx, "great", ""))
}

func TestConvertMarkdownToText(t *testing.T) {
	out := ConvertMarkdownToText("**Great** [product](https://example.com/p) see https://x.io now")

	assert.Equal(t, "Great product see now", out)
}
