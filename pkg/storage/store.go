package storage

import (
	"context"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// Store defines the interface for persistent engine state: the
// interaction state of recommendations (so dismissals and snoozes
// survive restarts) and the append-only feedback log.
type Store interface {
	SaveRecommendationState(ctx context.Context, rec *models.Recommendation) error
	ListRecommendationStates(ctx context.Context) ([]*models.Recommendation, error)
	DeleteRecommendationState(ctx context.Context, id string) error

	// Feedback is append-only; records are never updated and only
	// removed in bulk by explicit user action.
	AppendFeedback(ctx context.Context, record *models.FeedbackRecord) error
	ListFeedback(ctx context.Context) ([]*models.FeedbackRecord, error)
	ClearFeedback(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}
