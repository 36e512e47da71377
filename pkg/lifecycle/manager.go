package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
	"github.com/opscart/k8s-risk-advisor/pkg/ranker"
	"github.com/opscart/k8s-risk-advisor/pkg/storage"
)

// Manager owns the set of live recommendations and their interaction
// state. Both per-cycle reconciliation and asynchronous user actions
// mutate the same map, so every entry point serializes on mu: a user
// dismissal can never race a re-evaluation into resurrecting the id.
type Manager struct {
	mu    sync.Mutex
	store storage.Store

	recommendations map[string]*models.Recommendation
	cycle           uint64

	displayLimit    int
	snoozeDuration  time.Duration
	retentionCycles uint64
}

// New creates a lifecycle manager backed by the given store
func New(store storage.Store, displayLimit int, snoozeDuration time.Duration, retentionCycles int) *Manager {
	if retentionCycles < 1 {
		retentionCycles = 1
	}
	return &Manager{
		store:           store,
		recommendations: make(map[string]*models.Recommendation),
		displayLimit:    displayLimit,
		snoozeDuration:  snoozeDuration,
		retentionCycles: uint64(retentionCycles),
	}
}

// Load hydrates persisted recommendation state, typically at startup
func (m *Manager) Load(ctx context.Context) error {
	persisted, err := m.store.ListRecommendationStates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recommendation state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range persisted {
		rec.LastSeenCycle = m.cycle
		m.recommendations[rec.ID] = rec
	}
	return nil
}

// Reconcile matches this cycle's ranked risks against existing
// recommendations. New ids become pending; matched ids refresh their
// risk fields; expired snoozes wake; ids unseen for the retention
// window are garbage-collected. A dismissed id whose risk keeps
// appearing stays dismissed — only after the risk has been gone long
// enough to be collected does a reappearance create a fresh pending
// entry under the same id.
func (m *Manager) Reconcile(ctx context.Context, risks []models.PredictedRisk, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cycle++

	var firstErr error
	persist := func(rec *models.Recommendation) {
		if err := m.store.SaveRecommendationState(ctx, rec); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to persist recommendation %s: %w", rec.ID, err)
		}
	}

	for _, risk := range risks {
		id := risk.ID()
		existing, ok := m.recommendations[id]
		if !ok {
			rec := &models.Recommendation{
				ID:            id,
				PredictedRisk: risk,
				State:         models.StatePending,
				CreatedAt:     now,
				LastSeenCycle: m.cycle,
			}
			m.recommendations[id] = rec
			persist(rec)
			continue
		}

		existing.PredictedRisk = risk
		existing.LastSeenCycle = m.cycle
		if m.wake(existing, now) {
			persist(existing)
		}
	}

	// Age out recommendations whose risk has stopped appearing. One
	// missed cycle is not resolution; flapping inputs would otherwise
	// churn the board.
	for id, rec := range m.recommendations {
		if m.cycle-rec.LastSeenCycle > m.retentionCycles {
			delete(m.recommendations, id)
			if err := m.store.DeleteRecommendationState(ctx, id); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to delete recommendation %s: %w", id, err)
			}
		}
	}

	return firstErr
}

// wake flips an expired snooze back to pending. Caller holds mu.
func (m *Manager) wake(rec *models.Recommendation, now time.Time) bool {
	if rec.State == models.StateSnoozed && !rec.Snoozing(now) {
		rec.State = models.StatePending
		rec.SnoozedUntil = nil
		return true
	}
	return false
}

// Pending returns the top-N pending recommendations ranked by
// severity then confidence. Dismissed and unexpired snoozed entries
// never occupy a display slot.
func (m *Manager) Pending(now time.Time) []models.Recommendation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*models.Recommendation
	for _, rec := range m.recommendations {
		m.wake(rec, now)
		if rec.State == models.StatePending {
			pending = append(pending, rec)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return ranker.Less(pending[j].PredictedRisk, pending[i].PredictedRisk)
	})

	if len(pending) > m.displayLimit {
		pending = pending[:m.displayLimit]
	}

	out := make([]models.Recommendation, 0, len(pending))
	for _, rec := range pending {
		out = append(out, *rec)
	}
	return out
}

// Get returns a copy of the recommendation with the given id
func (m *Manager) Get(id string) (models.Recommendation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.recommendations[id]
	if !ok {
		return models.Recommendation{}, false
	}
	return *rec, true
}

// Accept marks a pending recommendation accepted and returns the
// action context for the external runner. The recommendation leaves
// the pending pool immediately.
func (m *Manager) Accept(ctx context.Context, id string, now time.Time) (*models.ActionContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.actionable(id, now)
	if err != nil {
		return nil, err
	}

	rec.State = models.StateAccepted
	if err := m.store.SaveRecommendationState(ctx, rec); err != nil {
		// Roll back so the user can retry
		rec.State = models.StatePending
		return nil, fmt.Errorf("failed to persist accept: %w", err)
	}

	return buildActionContext(rec, now), nil
}

// Dismiss marks a recommendation dismissed until its risk resolves
// and later reappears.
func (m *Manager) Dismiss(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.actionable(id, now)
	if err != nil {
		return err
	}

	prev := rec.State
	rec.State = models.StateDismissed
	rec.SnoozedUntil = nil
	if err := m.store.SaveRecommendationState(ctx, rec); err != nil {
		rec.State = prev
		return fmt.Errorf("failed to persist dismiss: %w", err)
	}
	return nil
}

// Snooze suppresses a recommendation until now + duration. A zero
// duration uses the configured default.
func (m *Manager) Snooze(ctx context.Context, id string, duration time.Duration, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.actionable(id, now)
	if err != nil {
		return err
	}

	if duration <= 0 {
		duration = m.snoozeDuration
	}
	until := now.Add(duration)

	prev := rec.State
	rec.State = models.StateSnoozed
	rec.SnoozedUntil = &until
	if err := m.store.SaveRecommendationState(ctx, rec); err != nil {
		rec.State = prev
		rec.SnoozedUntil = nil
		return fmt.Errorf("failed to persist snooze: %w", err)
	}
	return nil
}

// actionable resolves an id to a recommendation the user can act on.
// Caller holds mu.
func (m *Manager) actionable(id string, now time.Time) (*models.Recommendation, error) {
	rec, ok := m.recommendations[id]
	if !ok {
		return nil, fmt.Errorf("recommendation not found: %s", id)
	}
	m.wake(rec, now)
	if rec.State != models.StatePending && rec.State != models.StateSnoozed {
		return nil, fmt.Errorf("recommendation %s is %s, not actionable", id, rec.State)
	}
	return rec, nil
}

// Count returns the number of tracked recommendations in any state
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recommendations)
}
