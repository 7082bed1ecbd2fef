package domain

import "time"

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightRecommendation InsightType = "recommendation"
	InsightReward         InsightType = "reward"
	InsightSuggestion     InsightType = "suggestion"
	InsightAlert          InsightType = "alert"
)

// InsightItem is one suggestion produced by the text-generation collaborator.
type InsightItem struct {
	Type             InsightType `json:"type"`
	Title            string      `json:"title"`
	Message          string      `json:"message"`
	Priority         string      `json:"priority"`
	PredictedSavings *float64    `json:"predictedSavings,omitempty"`
	ActionItems      []string    `json:"actionItems,omitempty"`
}

// Insight is the parsed response for one snapshot.
type Insight struct {
	ID          string
	Items       []InsightItem
	Summary     string
	HabitStory  string
	GeneratedAt time.Time
}
