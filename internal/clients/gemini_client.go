package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spacesedan/sentitable/internal/models"
)

// BuildPrompt embeds the review text in the classification instruction.
func BuildPrompt(text string) string {
	return "Analyze the sentiment of this review and respond with either 'Positive', " +
		"'Negative', or 'Neutral': \"" + text + "\""
}

// GeminiClient classifies text with the Gemini generateContent REST endpoint.
// The credential travels as the key query parameter.
type GeminiClient struct {
	Client  *http.Client
	BaseURL string
	Model   string
}

// NewGeminiClient builds a client; a zero timeout keeps the transport default.
func NewGeminiClient(baseURL, model string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = GEMINI_BASE_URL
	}
	if model == "" {
		model = GEMINI_DEFAULT_MODEL
	}
	slog.Info("[GeminiClient] Initializing Client",
		slog.String("base_url", baseURL),
		slog.String("model", model),
		slog.Duration("timeout", timeout))

	return &GeminiClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
	}
}

func (g *GeminiClient) Name() string {
	return "gemini:" + g.Model
}

func (g *GeminiClient) NeedsCredential() bool {
	return true
}

func (g *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.BaseURL, g.Model)
}

// Classify returns the model's label, or a sentinel string. It never fails.
func (g *GeminiClient) Classify(ctx context.Context, text, credential string) string {
	start := time.Now()
	payload := models.GeminiRequest{
		Contents: []models.GeminiContent{{
			Parts: []models.GeminiPart{{Text: BuildPrompt(text)}},
		}},
		GenerationConfig: models.GeminiGenerationConfig{
			Temperature:     CLASSIFY_TEMPERATURE,
			TopK:            CLASSIFY_TOP_K,
			TopP:            CLASSIFY_TOP_P,
			MaxOutputTokens: CLASSIFY_MAX_TOKENS,
		},
	}

	body, err := g.postJSON(ctx, credential, payload)
	if err != nil {
		slog.Error("[GeminiClient] Sentiment analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.SentinelClassifyError
	}

	label, ok := models.GeminiText(body)
	if !ok {
		slog.Warn("[GeminiClient] Response carried no candidate text",
			slog.Duration("elapsed", time.Since(start)))
		return models.SentinelNoResult
	}

	slog.Debug("[GeminiClient] Sentiment analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(label)
}

// HealthCheck reports whether the endpoint host answers without a server error.
func (g *GeminiClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := g.Client.Do(req)
	if err != nil {
		slog.Warn("[GeminiClient] Health check failed",
			slog.String("error", redact(err).Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < http.StatusInternalServerError
}

// postJSON sends input and returns the reply body once it is known to be JSON.
// The status is not checked, since error envelopes are JSON too.
func (g *GeminiClient) postJSON(ctx context.Context, credential string, input any) ([]byte, error) {
	endpoint := g.endpoint()

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := target.Query()
	q.Set("key", credential)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", redact(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		slog.Warn("[GeminiClient] Non success status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if !json.Valid(respBody) {
		slog.Error("[GeminiClient] Response is not valid JSON",
			slog.String("endpoint", endpoint),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return nil, errors.New("response is not valid JSON")
	}

	return respBody, nil
}

// redact strips the request URL, and with it the credential, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}
