package kafka_client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spacesedan/sentitable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultMessage(t *testing.T) {
	result := models.EnrichmentResult{
		WidgetID:  "w-1",
		Row:       4,
		Text:      "Great product",
		Label:     models.LabelPositive,
		SettledAt: time.Unix(0, 0).UTC(),
	}

	msg, err := resultMessage("results", result)
	require.NoError(t, err)

	assert.Equal(t, "results", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("w-1"), msg.Key)

	var decoded models.EnrichmentResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, result, decoded)
}

func TestKafkaConfigDefaults(t *testing.T) {
	assert.False(t, KafkaConfig{}.Enabled())
	assert.True(t, KafkaConfig{Broker: "localhost:29092"}.Enabled())
	assert.Equal(t, KAFKA_TOPIC_SENTIMENT_RESULTS, KafkaConfig{}.topic())
	assert.Equal(t, "custom", KafkaConfig{Topic: "custom"}.topic())
}
