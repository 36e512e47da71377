package models

import "time"

// FeedbackRecord is a single user verdict on a recommendation.
// Records are append-only; they are aggregated on read and only
// removed by an explicit bulk clear.
type FeedbackRecord struct {
	ID               string
	RecommendationID string
	Provider         string
	Accurate         bool
	CreatedAt        time.Time
}

// ProviderStats is prediction accuracy for a single source
type ProviderStats struct {
	Accurate     int     `json:"accurate"`
	Total        int     `json:"total"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

// FeedbackStats aggregates recorded feedback across all sources
type FeedbackStats struct {
	TotalPredictions int                      `json:"total_predictions"`
	AccurateCount    int                      `json:"accurate_count"`
	InaccurateCount  int                      `json:"inaccurate_count"`
	AccuracyRate     float64                  `json:"accuracy_rate"`
	ByProvider       map[string]ProviderStats `json:"by_provider"`
}
