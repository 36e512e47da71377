package heuristics

import (
	"fmt"
	"sync"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/config"
	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

const (
	// minTrendSamples is the minimum history before projecting.
	minTrendSamples = 5
	// maxTrendSamples bounds per-cluster history retained in memory.
	maxTrendSamples = 120
	// minTrendConfidence drops projections from noisy data.
	minTrendConfidence = 0.6
)

type usageSample struct {
	at  time.Time
	cpu *float64
	mem *float64
}

// TrendTracker accumulates cluster usage readings across evaluation
// cycles and projects near-term resource exhaustion before a static
// threshold fires. Safe for concurrent use.
type TrendTracker struct {
	mu        sync.Mutex
	lookahead time.Duration
	samples   map[string][]usageSample
}

// NewTrendTracker creates a tracker projecting usage lookahead into the future
func NewTrendTracker(lookahead time.Duration) *TrendTracker {
	return &TrendTracker{
		lookahead: lookahead,
		samples:   make(map[string][]usageSample),
	}
}

// Observe records one cycle's cluster usage readings
func (t *TrendTracker) Observe(stats []models.ClusterStat, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, stat := range stats {
		if stat.CPUUsedPercent == nil && stat.MemUsedPercent == nil {
			continue
		}
		history := append(t.samples[stat.Cluster], usageSample{
			at:  at,
			cpu: stat.CPUUsedPercent,
			mem: stat.MemUsedPercent,
		})
		if len(history) > maxTrendSamples {
			history = history[len(history)-maxTrendSamples:]
		}
		t.samples[stat.Cluster] = history
	}
}

// Predict returns early warnings for clusters whose usage is below the
// configured threshold now but projected to cross it within the
// lookahead window. Clusters already over threshold are skipped; the
// static rules cover those.
func (t *TrendTracker) Predict(cfg config.Thresholds, now time.Time) []models.PredictedRisk {
	t.mu.Lock()
	defer t.mu.Unlock()

	var risks []models.PredictedRisk

	for cluster, history := range t.samples {
		if len(history) < minTrendSamples {
			continue
		}

		if r, ok := t.project(cluster, history, now, "CPU", cfg.CPUPressurePercent,
			func(s usageSample) *float64 { return s.cpu }); ok {
			risks = append(risks, r)
		}
		if r, ok := t.project(cluster, history, now, "memory", cfg.MemoryPressurePercent,
			func(s usageSample) *float64 { return s.mem }); ok {
			risks = append(risks, r)
		}
	}

	return risks
}

func (t *TrendTracker) project(cluster string, history []usageSample, now time.Time,
	label string, threshold float64, value func(usageSample) *float64) (models.PredictedRisk, bool) {

	start := history[0].at
	var x, y []float64
	for _, s := range history {
		v := value(s)
		if v == nil {
			continue
		}
		x = append(x, s.at.Sub(start).Minutes())
		y = append(y, *v)
	}
	if len(x) < minTrendSamples {
		return models.PredictedRisk{}, false
	}

	slope, intercept, r2 := linearRegression(x, y)
	current := y[len(y)-1]

	// Flat or falling usage never projects into exhaustion
	if slope <= 0 || current >= threshold || r2 < minTrendConfidence {
		return models.PredictedRisk{}, false
	}

	horizon := now.Add(t.lookahead).Sub(start).Minutes()
	projected := slope*horizon + intercept
	if projected < threshold {
		return models.PredictedRisk{}, false
	}

	return models.PredictedRisk{
		Type:     models.RiskResourceExhaustion,
		Severity: models.SeverityWarning,
		Name:     cluster,
		Cluster:  cluster,
		Reason: fmt.Sprintf("Cluster %s usage at %.0f%% and rising, projected to cross %.0f%% within %s",
			label, current, threshold, t.lookahead),
		Metric:     fmt.Sprintf("%.0f%% %s (rising)", current, label),
		Confidence: r2,
		Source:     models.SourceHeuristic,
	}, true
}

// linearRegression fits y = slope*x + intercept and returns the fit
// quality as R².
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	n := float64(len(x))
	if n == 0 {
		return 0, 0, 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var numerator, denominator float64
	for i := range x {
		numerator += (x[i] - meanX) * (y[i] - meanY)
		denominator += (x[i] - meanX) * (x[i] - meanX)
	}
	if denominator == 0 {
		return 0, meanY, 0
	}

	slope = numerator / denominator
	intercept = meanY - slope*meanX

	var ssRes, ssTotal float64
	for i := range x {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTotal == 0 {
		return slope, intercept, 0
	}
	return slope, intercept, 1.0 - (ssRes / ssTotal)
}
