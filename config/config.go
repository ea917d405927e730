package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidProvider = errors.New("invalid classifier provider")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrInvalidDuration = errors.New("invalid duration")
)

const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderOpenAI = "openai"
	ProviderVader  = "vader"
)

type Config struct {
	Env        string
	LogLevel   string
	ServerAddr string

	Provider        string
	GeminiBaseURL   string
	GeminiModel     string
	OpenAIBaseURL   string
	OpenAIModel     string
	ClassifyTimeout time.Duration
	MaxConcurrency  int

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	AWSEndpoint     string
	AWSRegion       string
	ResultsTable    string
	ResultBatchSize int

	KafkaBroker  string
	ResultsTopic string
}

// Load reads the process environment. Unset values fall back to defaults;
// malformed values are errors.
func Load() (Config, error) {
	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		Provider:      strings.ToLower(getEnv("CLASSIFIER_PROVIDER", ProviderGemini)),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AWSEndpoint:  os.Getenv("AWS_ENDPOINT"),
		AWSRegion:    os.Getenv("AWS_REGION"),
		ResultsTable: os.Getenv("DYNAMODB_RESULTS_TABLE"),

		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		ResultsTopic: os.Getenv("KAFKA_RESULTS_TOPIC"),
	}

	switch cfg.Provider {
	case ProviderGemini, ProviderGenAI, ProviderOpenAI, ProviderVader:
	default:
		return cfg, fmt.Errorf("CLASSIFIER_PROVIDER=%q: %w", cfg.Provider, ErrInvalidProvider)
	}

	var err error
	if cfg.ClassifyTimeout, err = getDuration("CLASSIFY_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.MaxConcurrency, err = getInt("ENRICH_MAX_CONCURRENCY"); err != nil {
		return cfg, err
	}
	if cfg.ResultBatchSize, err = getInt("RESULT_BATCH_SIZE"); err != nil {
		return cfg, err
	}
	if v := os.Getenv("VALKEY_TLS"); v != "" {
		if cfg.ValkeyTLS, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("VALKEY_TLS=%q: %w", v, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidNumber)
	}
	return n, nil
}

func getDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidDuration)
	}
	return d, nil
}
