package kafka_client

const (
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results" // settled enrichment results, keyed by widget id
)

const (
	FLUSH_TIMEOUT_MS = 5000
	MAX_RETRIES      = 3
)
