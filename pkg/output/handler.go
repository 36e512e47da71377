package output

import (
	"context"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayRecommendations(ctx context.Context, recommendations []models.Recommendation) error
	DisplayStats(ctx context.Context, stats *models.FeedbackStats) error
	Format() string
}
