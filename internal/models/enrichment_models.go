package models

import "time"

// EnrichmentResult is a settled classification written into a visible table.
type EnrichmentResult struct {
	ResultID   string    `json:"result_id" dynamodbav:"result_id"`
	WidgetID   string    `json:"widget_id" dynamodbav:"widget_id"`
	Generation uint64    `json:"generation" dynamodbav:"generation"`
	Row        int       `json:"row" dynamodbav:"row"`
	Text       string    `json:"text" dynamodbav:"text"`
	Label      string    `json:"label" dynamodbav:"label"`
	Provider   string    `json:"provider" dynamodbav:"provider"`
	SettledAt  time.Time `json:"settled_at" dynamodbav:"settled_at"`
}

// Sentinel strings written into an enrichment cell in place of a label.
const (
	SentinelMissingCredential = "API key missing"
	SentinelNoResult          = "No sentiment result"
	SentinelClassifyError     = "Error analyzing sentiment"
)

// Labels the classifiers are asked to choose from.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
)
