package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RiskKind identifies the class of problem a signal or risk describes
type RiskKind string

const (
	RiskPodRestart         RiskKind = "pod-restart"
	RiskNodeOffline        RiskKind = "node-offline"
	RiskNodePressure       RiskKind = "node-pressure"
	RiskGPUExhaustion      RiskKind = "gpu-exhaustion"
	RiskResourceExhaustion RiskKind = "resource-exhaustion"
	RiskSecurity           RiskKind = "security"
	RiskDeploymentDegraded RiskKind = "deployment-degraded"
)

// Severity represents how urgent a predicted risk is
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank returns a sortable weight for the severity (higher = more severe)
func (s Severity) Rank() int {
	if s == SeverityCritical {
		return 2
	}
	return 1
}

// Risk sources. Provider-scoped risks use "provider:<id>".
const (
	SourceHeuristic = "heuristic"
	SourceConsensus = "consensus"
)

// ProviderSource builds the source tag for a named AI provider
func ProviderSource(providerID string) string {
	return "provider:" + providerID
}

// RiskSignal is a single normalized fact derived from raw telemetry.
// Signals are recomputed from scratch every cycle and never persisted.
type RiskSignal struct {
	Kind         RiskKind
	ResourceName string
	Cluster      string
	Namespace    string
	// MetricValue is nil when the underlying metric was not reported.
	// A missing metric must never be read as zero.
	MetricValue *float64
	Reason      string
}

// PredictedRisk is a candidate problem inferred from one or more signals
type PredictedRisk struct {
	Type       RiskKind
	Severity   Severity
	Name       string
	Cluster    string
	Reason     string
	Metric     string
	Confidence float64
	Source     string
}

// Key returns the deduplication key shared by risks describing the
// same underlying problem, regardless of which analyzer found it.
func (r PredictedRisk) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.Type, r.Name, r.Cluster)
}

// ID returns a stable identifier derived from the dedup key only.
// Confidence and severity fluctuate between cycles; identity must not.
func (r PredictedRisk) ID() string {
	sum := sha256.Sum256([]byte(r.Key()))
	return hex.EncodeToString(sum[:8])
}

// Float returns a pointer to v, for optional signal metrics
func Float(v float64) *float64 {
	return &v
}
