package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/sentitable/internal/models"
)

const VADER_THRESHOLD = 0.20

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup so
// only the words reach the analyzer.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

func AnalyzeWithVADER(text string) (float64, string) {
	score := analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound

	switch {
	case score >= VADER_THRESHOLD:
		return score, models.LabelPositive
	case score <= -VADER_THRESHOLD:
		return score, models.LabelNegative
	default:
		return score, models.LabelNeutral
	}
}

// VaderClassifier labels text locally. It needs no credential and makes no
// network calls.
type VaderClassifier struct{}

func (VaderClassifier) Name() string {
	return "vader"
}

func (VaderClassifier) NeedsCredential() bool {
	return false
}

func (VaderClassifier) Classify(ctx context.Context, text, _ string) string {
	if ctx.Err() != nil {
		return models.SentinelClassifyError
	}
	_, label := AnalyzeWithVADER(text)
	return label
}
