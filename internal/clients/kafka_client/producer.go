package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentitable/internal/models"
)

// ResultPublisher streams settled enrichment results to Kafka.
type ResultPublisher struct {
	producer *kafka.Producer
	topic    string
	done     chan struct{}
}

func NewResultPublisher(cfg KafkaConfig) (*ResultPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.topic()))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	rp := &ResultPublisher{
		producer: p,
		topic:    cfg.topic(),
		done:     make(chan struct{}),
	}
	go rp.deliveryReports()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return rp, nil
}

func (rp *ResultPublisher) deliveryReports() {
	defer close(rp.done)
	for e := range rp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Delivery failed",
					slog.String("key", string(ev.Key)),
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error", slog.String("error", ev.Error()))
		}
	}
}

func resultMessage(topic string, result models.EnrichmentResult) (*kafka.Message, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal result: %w", err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(result.WidgetID),
		Value:          payload,
	}, nil
}

// Record publishes one result; failures are logged and dropped.
func (rp *ResultPublisher) Record(_ context.Context, result models.EnrichmentResult) {
	msg, err := resultMessage(rp.topic, result)
	if err != nil {
		slog.Error("[KafkaClient] Failed to build message", slog.String("error", err.Error()))
		return
	}

	for i := 0; i < MAX_RETRIES; i++ {
		err = rp.producer.Produce(msg, nil)
		if err == nil {
			return
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	slog.Error("[KafkaClient] Dropped enrichment result",
		slog.String("widget_id", result.WidgetID),
		slog.Int("row", result.Row))
}

func (rp *ResultPublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := rp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	rp.producer.Close()
	<-rp.done
	slog.Info("[KafkaClient] Kafka producer shut down")
}
