package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/spacesedan/sentitable/internal/utils"
)

const (
	SENTIMENT_RESULTS_TABLE_NAME = "SentimentResults"
	MAX_BATCH_WRITE_SIZE         = 25
	RESULT_TTL                   = 24 * time.Hour
	FLUSH_INTERVAL               = 5 * time.Second
)

type BatchWriteAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// ResultTable buffers settled enrichment results and writes them in batches.
type ResultTable struct {
	client    BatchWriteAPI
	tableName string
	buffer    *utils.BatchBuffer[models.EnrichmentResult]
	flushMu   sync.Mutex
}

func NewResultTable(client BatchWriteAPI, tableName string, batchSize int) *ResultTable {
	if tableName == "" {
		tableName = SENTIMENT_RESULTS_TABLE_NAME
	}
	if batchSize <= 0 || batchSize > MAX_BATCH_WRITE_SIZE {
		batchSize = MAX_BATCH_WRITE_SIZE
	}
	return &ResultTable{
		client:    client,
		tableName: tableName,
		buffer:    utils.NewBatchBuffer[models.EnrichmentResult](batchSize),
	}
}

// Record buffers one result and flushes when the batch is full.
func (rt *ResultTable) Record(ctx context.Context, result models.EnrichmentResult) {
	if !rt.buffer.Add(result) {
		return
	}
	if err := rt.Flush(ctx); err != nil {
		slog.Error("[DynamoDB] Failed to flush sentiment results",
			slog.String("error", err.Error()))
	}
}

// Run flushes on an interval until ctx ends, then flushes what is left.
func (rt *ResultTable) Run(ctx context.Context) {
	ticker := time.NewTicker(FLUSH_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			if err := rt.Flush(flushCtx); err != nil {
				slog.Error("[DynamoDB] Final flush failed", slog.String("error", err.Error()))
			}
			cancel()
			return
		case <-ticker.C:
			if err := rt.Flush(ctx); err != nil {
				slog.Error("[DynamoDB] Periodic flush failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (rt *ResultTable) Flush(ctx context.Context) error {
	rt.flushMu.Lock()
	defer rt.flushMu.Unlock()

	if !rt.buffer.HasData() {
		return nil
	}
	rt.buffer.LogBatchProcessing("sentiment_results")
	return rt.BatchInsertSentimentResults(ctx, rt.buffer.GetAndClear())
}

func (rt *ResultTable) BatchInsertSentimentResults(ctx context.Context, results []models.EnrichmentResult) error {
	for start := 0; start < len(results); start += MAX_BATCH_WRITE_SIZE {
		end := start + MAX_BATCH_WRITE_SIZE
		if end > len(results) {
			end = len(results)
		}

		writeRequests := make([]types.WriteRequest, 0, end-start)
		for _, result := range results[start:end] {
			item, err := ResultToDynamoDBItem(result)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := rt.writeWithRetry(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored sentiment results",
		slog.Int("count", len(results)))
	return nil
}

func (rt *ResultTable) writeWithRetry(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := rt.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			rt.tableName: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write sentiment results: %w", err)
	}

	retryCount := 0
	backoff := 500 * time.Millisecond
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[rt.tableName])))

		out, err = rt.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if len(out.UnprocessedItems) > 0 {
		slog.Error("[DynamoDB] Some sentiment items failed after retries",
			slog.Int("remaining", len(out.UnprocessedItems[rt.tableName])))
	}
	return nil
}

func ResultToDynamoDBItem(result models.EnrichmentResult) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal sentiment result: %w", err)
	}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(result.SettledAt.Add(RESULT_TTL).Unix(), 10)}
	return item, nil
}
