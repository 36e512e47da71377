package feedback

import (
	"context"
	"fmt"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
	"github.com/opscart/k8s-risk-advisor/pkg/storage"
)

// Tracker records user verdicts on recommendations and aggregates
// them into per-provider accuracy statistics. All aggregation happens
// on read; the underlying log is append-only.
type Tracker struct {
	store storage.Store
}

func New(store storage.Store) *Tracker {
	return &Tracker{store: store}
}

// Record appends one feedback entry. A failed write is surfaced to
// the caller; silently losing a verdict would skew every future
// accuracy report.
func (t *Tracker) Record(ctx context.Context, recommendationID, provider string, accurate bool) error {
	if recommendationID == "" {
		return fmt.Errorf("recommendation id is required")
	}
	record := &models.FeedbackRecord{
		RecommendationID: recommendationID,
		Provider:         provider,
		Accurate:         accurate,
	}
	if err := t.store.AppendFeedback(ctx, record); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// Stats aggregates the feedback log into overall and per-provider
// accuracy. Rates are 0 when no feedback exists.
func (t *Tracker) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	records, err := t.store.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback log: %w", err)
	}

	stats := &models.FeedbackStats{
		ByProvider: make(map[string]models.ProviderStats),
	}

	for _, record := range records {
		stats.TotalPredictions++
		if record.Accurate {
			stats.AccurateCount++
		} else {
			stats.InaccurateCount++
		}

		provider := stats.ByProvider[record.Provider]
		provider.Total++
		if record.Accurate {
			provider.Accurate++
		}
		stats.ByProvider[record.Provider] = provider
	}

	if stats.TotalPredictions > 0 {
		stats.AccuracyRate = float64(stats.AccurateCount) / float64(stats.TotalPredictions)
	}
	for name, provider := range stats.ByProvider {
		if provider.Total > 0 {
			provider.AccuracyRate = float64(provider.Accurate) / float64(provider.Total)
		}
		stats.ByProvider[name] = provider
	}

	return stats, nil
}

// Clear bulk-deletes the entire feedback log
func (t *Tracker) Clear(ctx context.Context) error {
	if err := t.store.ClearFeedback(ctx); err != nil {
		return fmt.Errorf("failed to clear feedback log: %w", err)
	}
	return nil
}
