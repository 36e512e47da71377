package heuristics

import (
	"fmt"

	"github.com/opscart/k8s-risk-advisor/pkg/config"
	"github.com/opscart/k8s-risk-advisor/pkg/models"
	"github.com/opscart/k8s-risk-advisor/pkg/normalizer"
)

// Critical sub-thresholds for cluster resource usage. These are
// stricter than the user-configurable warning thresholds and fixed.
const (
	criticalCPUPercent    = 90.0
	criticalMemoryPercent = 95.0
)

// Evaluate applies static threshold rules to normalized signals and
// returns the resulting predicted risks. Heuristic risks always carry
// confidence 1.0. Each rule family dedupes its own pass by
// (type, resource, cluster); cross-family dedup belongs to the ranker.
func Evaluate(signals []models.RiskSignal, cfg config.Thresholds) []models.PredictedRisk {
	var risks []models.PredictedRisk
	seen := make(map[string]bool)

	emit := func(r models.PredictedRisk) {
		r.Confidence = 1.0
		r.Source = models.SourceHeuristic
		key := r.Key() + "|" + r.Reason
		if seen[key] {
			return
		}
		seen[key] = true
		risks = append(risks, r)
	}

	for _, sig := range signals {
		switch sig.Kind {
		case models.RiskPodRestart:
			if r, ok := evalPodRestart(sig, cfg); ok {
				emit(r)
			}
		case models.RiskResourceExhaustion:
			if r, ok := evalResourceUsage(sig, cfg); ok {
				emit(r)
			}
		case models.RiskNodeOffline:
			emit(models.PredictedRisk{
				Type:     models.RiskNodeOffline,
				Severity: models.SeverityCritical,
				Name:     sig.ResourceName,
				Cluster:  sig.Cluster,
				Reason:   fmt.Sprintf("Node unavailable: %s", sig.Reason),
			})
		case models.RiskGPUExhaustion:
			if r, ok := evalGPU(sig); ok {
				emit(r)
			}
		}
	}

	return risks
}

func evalPodRestart(sig models.RiskSignal, cfg config.Thresholds) (models.PredictedRisk, bool) {
	if sig.MetricValue == nil {
		return models.PredictedRisk{}, false
	}

	restarts := int32(*sig.MetricValue)
	if restarts < cfg.HighRestartCount {
		return models.PredictedRisk{}, false
	}

	severity := models.SeverityWarning
	if restarts >= cfg.CriticalRestartCount {
		severity = models.SeverityCritical
	}

	reason := fmt.Sprintf("Pod restarted %d times (threshold: %d)", restarts, cfg.HighRestartCount)
	if sig.Reason != "" {
		reason = fmt.Sprintf("%s, last reason: %s", reason, sig.Reason)
	}

	return models.PredictedRisk{
		Type:     models.RiskPodRestart,
		Severity: severity,
		Name:     sig.ResourceName,
		Cluster:  sig.Cluster,
		Reason:   reason,
		Metric:   fmt.Sprintf("%d restarts", restarts),
	}, true
}

func evalResourceUsage(sig models.RiskSignal, cfg config.Thresholds) (models.PredictedRisk, bool) {
	if sig.MetricValue == nil {
		return models.PredictedRisk{}, false
	}
	used := *sig.MetricValue

	var threshold, critical float64
	var label string
	switch sig.Reason {
	case normalizer.ReasonCPUUsage:
		threshold, critical, label = cfg.CPUPressurePercent, criticalCPUPercent, "CPU"
	case normalizer.ReasonMemoryUsage:
		threshold, critical, label = cfg.MemoryPressurePercent, criticalMemoryPercent, "memory"
	default:
		return models.PredictedRisk{}, false
	}

	if used < threshold {
		return models.PredictedRisk{}, false
	}

	severity := models.SeverityWarning
	if used >= critical {
		severity = models.SeverityCritical
	}

	return models.PredictedRisk{
		Type:     models.RiskResourceExhaustion,
		Severity: severity,
		Name:     sig.ResourceName,
		Cluster:  sig.Cluster,
		Reason:   fmt.Sprintf("Cluster %s usage at %.0f%% (threshold: %.0f%%)", label, used, threshold),
		Metric:   fmt.Sprintf("%.0f%% %s", used, label),
	}, true
}

func evalGPU(sig models.RiskSignal) (models.PredictedRisk, bool) {
	if sig.MetricValue == nil {
		if sig.Reason != normalizer.ReasonGPUCapacityMissing {
			return models.PredictedRisk{}, false
		}
		return models.PredictedRisk{
			Type:     models.RiskGPUExhaustion,
			Severity: models.SeverityWarning,
			Name:     sig.ResourceName,
			Cluster:  sig.Cluster,
			Reason:   "GPU-labeled node reports no GPU capacity",
		}, true
	}

	if *sig.MetricValue > 0 {
		return models.PredictedRisk{}, false
	}

	return models.PredictedRisk{
		Type:     models.RiskGPUExhaustion,
		Severity: models.SeverityWarning,
		Name:     sig.ResourceName,
		Cluster:  sig.Cluster,
		Reason:   "No GPU headroom remaining on node",
		Metric:   sig.Reason,
	}, true
}
