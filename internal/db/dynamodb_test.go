package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	calls   []*dynamodb.BatchWriteItemInput
	nextOut []*dynamodb.BatchWriteItemOutput
}

func (f *fakeWriter) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	if len(f.nextOut) > 0 {
		out := f.nextOut[0]
		f.nextOut = f.nextOut[1:]
		return out, nil
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func result(row int) models.EnrichmentResult {
	return models.EnrichmentResult{
		ResultID:   "r",
		WidgetID:   "w",
		Generation: 3,
		Row:        row,
		Text:       "Great product",
		Label:      models.LabelPositive,
		Provider:   "gemini:gemini-1.5-flash",
		SettledAt:  time.Unix(1700000000, 0).UTC(),
	}
}

func TestResultToDynamoDBItem(t *testing.T) {
	item, err := ResultToDynamoDBItem(result(2))
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "w"}, item["widget_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Positive"}, item["label"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, item["row"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3"}, item["generation"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1700086400"}, item["ttl"])
}

func TestRecordFlushesFullBatch(t *testing.T) {
	writer := &fakeWriter{}
	rt := NewResultTable(writer, "Results", 2)

	rt.Record(context.Background(), result(0))
	assert.Empty(t, writer.calls)

	rt.Record(context.Background(), result(1))
	require.Len(t, writer.calls, 1)
	assert.Len(t, writer.calls[0].RequestItems["Results"], 2)
}

func TestFlushRetriesUnprocessedItems(t *testing.T) {
	unprocessed := map[string][]types.WriteRequest{
		"Results": {{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{}}}},
	}
	writer := &fakeWriter{nextOut: []*dynamodb.BatchWriteItemOutput{
		{UnprocessedItems: unprocessed},
		{},
	}}
	rt := NewResultTable(writer, "Results", 10)
	rt.Record(context.Background(), result(0))

	require.NoError(t, rt.Flush(context.Background()))
	require.Len(t, writer.calls, 2)
	assert.Equal(t, unprocessed, writer.calls[1].RequestItems)
}

func TestBatchInsertSplitsLargeBatches(t *testing.T) {
	writer := &fakeWriter{}
	rt := NewResultTable(writer, "", 0)

	results := make([]models.EnrichmentResult, 60)
	for i := range results {
		results[i] = result(i)
	}
	require.NoError(t, rt.BatchInsertSentimentResults(context.Background(), results))

	require.Len(t, writer.calls, 3)
	assert.Len(t, writer.calls[0].RequestItems[SENTIMENT_RESULTS_TABLE_NAME], 25)
	assert.Len(t, writer.calls[2].RequestItems[SENTIMENT_RESULTS_TABLE_NAME], 10)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	writer := &fakeWriter{}
	rt := NewResultTable(writer, "Results", 10)
	rt.Record(context.Background(), result(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rt.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	require.Len(t, writer.calls, 1)
}
