package aiprovider

import (
	"context"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// maxContextItems caps how many signal samples are sent to a provider
// per analysis call to bound request size and cost.
const maxContextItems = 20

// Provider analyzes a signal snapshot and returns candidate risks with
// provider-assigned confidence scores. Implementations must honor
// context cancellation; a hung provider is cut off by the adapter.
type Provider interface {
	Analyze(ctx context.Context, signals []models.RiskSignal, analysis AnalysisContext) ([]models.PredictedRisk, error)
	Name() string
}

// AnalysisContext is the bounded summary of the current snapshot that
// accompanies the signal sample on every provider call.
type AnalysisContext struct {
	SignalCounts map[models.RiskKind]int `json:"signal_counts"`
	SampleNames  []string                `json:"sample_names"`
	Clusters     []string                `json:"clusters"`
	CollectedAt  time.Time               `json:"collected_at"`
}

// BuildContext summarizes signals into a capped analysis context
func BuildContext(signals []models.RiskSignal, collectedAt time.Time) AnalysisContext {
	analysis := AnalysisContext{
		SignalCounts: make(map[models.RiskKind]int),
		CollectedAt:  collectedAt,
	}

	clusters := make(map[string]bool)
	for _, sig := range signals {
		analysis.SignalCounts[sig.Kind]++
		if len(analysis.SampleNames) < maxContextItems {
			analysis.SampleNames = append(analysis.SampleNames, string(sig.Kind)+"/"+sig.ResourceName)
		}
		clusters[sig.Cluster] = true
	}
	for cluster := range clusters {
		analysis.Clusters = append(analysis.Clusters, cluster)
	}
	return analysis
}

// capSignals bounds the signal sample included in a provider request
func capSignals(signals []models.RiskSignal) []models.RiskSignal {
	if len(signals) <= maxContextItems {
		return signals
	}
	return signals[:maxContextItems]
}
