package clients

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/sentitable/internal/models"
)

// OpenAIClient classifies with a chat completion. The credential is sent per
// request, so a single client serves every widget.
type OpenAIClient struct {
	Client openai.Client
	Model  string
}

func NewOpenAIClient(baseURL, model string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = OPENAI_DEFAULT_MODEL
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", timeout))

	return &OpenAIClient{
		Client: openai.NewClient(opts...),
		Model:  model,
	}
}

func (c *OpenAIClient) Name() string {
	return "openai:" + c.Model
}

func (c *OpenAIClient) NeedsCredential() bool {
	return true
}

func (c *OpenAIClient) Classify(ctx context.Context, text, credential string) string {
	start := time.Now()

	resp, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(text)),
		},
		Temperature:         openai.Float(CLASSIFY_TEMPERATURE),
		TopP:                openai.Float(CLASSIFY_TOP_P),
		MaxCompletionTokens: openai.Int(CLASSIFY_MAX_TOKENS),
	}, option.WithAPIKey(credential))
	if err != nil {
		slog.Error("[OpenAIClient] Sentiment analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.SentinelClassifyError
	}

	if resp == nil || len(resp.Choices) == 0 {
		slog.Warn("[OpenAIClient] Response carried no choices",
			slog.Duration("elapsed", time.Since(start)))
		return models.SentinelNoResult
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
