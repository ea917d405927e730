package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/spacesedan/sentitable/internal/sentiment"
)

// Classifier is the surface every provider below satisfies.
type Classifier interface {
	Name() string
	NeedsCredential() bool
	Classify(ctx context.Context, text, credential string) string
}

type ClassifierOptions struct {
	Provider      string
	GeminiBaseURL string
	GeminiModel   string
	OpenAIBaseURL string
	OpenAIModel   string
	Timeout       time.Duration
}

// NewClassifier returns the classifier for opts.Provider together with a
// health probe. The probe is nil when the provider has nothing to probe.
func NewClassifier(opts ClassifierOptions) (Classifier, func(context.Context) bool, error) {
	switch opts.Provider {
	case "", "gemini":
		c := NewGeminiClient(opts.GeminiBaseURL, opts.GeminiModel, opts.Timeout)
		return c, c.HealthCheck, nil
	case "genai":
		c := NewGenAIClient(opts.GeminiBaseURL, opts.GeminiModel, opts.Timeout)
		probe := NewGeminiClient(opts.GeminiBaseURL, opts.GeminiModel, HEALTHCHECK_TIMEOUT)
		return c, probe.HealthCheck, nil
	case "openai":
		return NewOpenAIClient(opts.OpenAIBaseURL, opts.OpenAIModel, opts.Timeout), nil, nil
	case "vader":
		return sentiment.VaderClassifier{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("[Classifier] unknown provider %q", opts.Provider)
	}
}
