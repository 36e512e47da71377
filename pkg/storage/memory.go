package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// MemoryStore implements Store without external dependencies. Used
// when persistence is disabled and as the test double for the
// lifecycle manager and feedback tracker.
type MemoryStore struct {
	mu       sync.RWMutex
	states   map[string]*models.Recommendation
	feedback []*models.FeedbackRecord

	// FailWrites makes every mutating call return an error, for
	// exercising persistence-error paths in tests.
	FailWrites bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*models.Recommendation),
	}
}

func (s *MemoryStore) SaveRecommendationState(ctx context.Context, rec *models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("write failed")
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	stored := *rec
	s.states[rec.ID] = &stored
	return nil
}

func (s *MemoryStore) ListRecommendationStates(ctx context.Context) ([]*models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Recommendation, 0, len(s.states))
	for _, rec := range s.states {
		stored := *rec
		out = append(out, &stored)
	}
	return out, nil
}

func (s *MemoryStore) DeleteRecommendationState(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("write failed")
	}

	delete(s.states, id)
	return nil
}

func (s *MemoryStore) AppendFeedback(ctx context.Context, record *models.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("write failed")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	stored := *record
	s.feedback = append(s.feedback, &stored)
	return nil
}

func (s *MemoryStore) ListFeedback(ctx context.Context) ([]*models.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FeedbackRecord, 0, len(s.feedback))
	for _, record := range s.feedback {
		stored := *record
		out = append(out, &stored)
	}
	return out, nil
}

func (s *MemoryStore) ClearFeedback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("write failed")
	}

	s.feedback = nil
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
