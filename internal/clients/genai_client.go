package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spacesedan/sentitable/internal/models"
	"google.golang.org/genai"
)

// GenAIClient classifies through the Gemini SDK. SDK clients are bound to an
// API key, so the most recently used ones are cached per credential.
type GenAIClient struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client

	mu      sync.Mutex
	clients *lru.Cache[string, *genai.Client]
}

func NewGenAIClient(baseURL, model string, timeout time.Duration) *GenAIClient {
	if model == "" {
		model = GEMINI_DEFAULT_MODEL
	}
	slog.Info("[GenAIClient] Initializing Client",
		slog.String("model", model),
		slog.Duration("timeout", timeout))

	cache, _ := lru.New[string, *genai.Client](GENAI_CLIENT_CACHE_SIZE)
	return &GenAIClient{
		Model:      model,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		clients:    cache,
	}
}

func (c *GenAIClient) Name() string {
	return "genai:" + c.Model
}

func (c *GenAIClient) NeedsCredential() bool {
	return true
}

func (c *GenAIClient) sdkClient(ctx context.Context, credential string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.clients.Get(credential); ok {
		return cl, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.HTTPClient,
	}
	if c.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.BaseURL}
	}

	cl, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.clients.Add(credential, cl)
	return cl, nil
}

func (c *GenAIClient) Classify(ctx context.Context, text, credential string) string {
	start := time.Now()

	cl, err := c.sdkClient(ctx, credential)
	if err != nil {
		slog.Error("[GenAIClient] Client setup failed", slog.String("error", err.Error()))
		return models.SentinelClassifyError
	}

	resp, err := cl.Models.GenerateContent(ctx, c.Model, genai.Text(BuildPrompt(text)), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](CLASSIFY_TEMPERATURE),
		TopK:            genai.Ptr[float32](CLASSIFY_TOP_K),
		TopP:            genai.Ptr[float32](CLASSIFY_TOP_P),
		MaxOutputTokens: CLASSIFY_MAX_TOKENS,
	})
	if err != nil {
		slog.Error("[GenAIClient] Sentiment analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.SentinelClassifyError
	}

	label, ok := genAIText(resp)
	if !ok {
		slog.Warn("[GenAIClient] Response carried no candidate text",
			slog.Duration("elapsed", time.Since(start)))
		return models.SentinelNoResult
	}
	return strings.TrimSpace(label)
}

func genAIText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", false
	}
	return content.Parts[0].Text, true
}
