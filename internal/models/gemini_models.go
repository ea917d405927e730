package models

import "github.com/tidwall/gjson"

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig"`
}

// GeminiTextPath locates the label in a generateContent response.
const GeminiTextPath = "candidates.0.content.parts.0.text"

// GeminiText returns the first candidate's first part text. Anything other
// than a JSON string at that path counts as absent.
func GeminiText(body []byte) (string, bool) {
	res := gjson.GetBytes(body, GeminiTextPath)
	if res.Type != gjson.String {
		return "", false
	}
	return res.Str, true
}
