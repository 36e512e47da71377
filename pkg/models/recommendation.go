package models

import "time"

// RecommendationState represents the user disposition of a recommendation
type RecommendationState string

const (
	StatePending   RecommendationState = "pending"
	StateAccepted  RecommendationState = "accepted"
	StateDismissed RecommendationState = "dismissed"
	StateSnoozed   RecommendationState = "snoozed"
)

// Recommendation is a PredictedRisk promoted for user display,
// carrying interaction state that survives re-evaluation cycles.
type Recommendation struct {
	ID string
	PredictedRisk

	State        RecommendationState
	SnoozedUntil *time.Time

	// Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
	// LastSeenCycle is the evaluation cycle that last produced a
	// matching risk; used to age out resolved recommendations.
	LastSeenCycle uint64
}

// Snoozing reports whether the recommendation is still suppressed at now
func (r *Recommendation) Snoozing(now time.Time) bool {
	return r.State == StateSnoozed && r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil)
}

// ActionContext is the structured payload handed to the external
// action runner when a recommendation is accepted.
type ActionContext struct {
	RecommendationID string    `json:"recommendation_id"`
	RiskType         RiskKind  `json:"risk_type"`
	Severity         Severity  `json:"severity"`
	Resource         string    `json:"resource"`
	Cluster          string    `json:"cluster,omitempty"`
	Reason           string    `json:"reason"`
	Metric           string    `json:"metric,omitempty"`
	Confidence       float64   `json:"confidence"`
	Source           string    `json:"source"`
	SuggestedCommand string    `json:"suggested_command,omitempty"`
	AcceptedAt       time.Time `json:"accepted_at"`
}
