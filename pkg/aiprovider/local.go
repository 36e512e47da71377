package aiprovider

import (
	"context"
	"fmt"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// LocalProvider is a deterministic, offline analyzer for clusters
// without external API access. It applies looser cutoffs than the
// heuristic evaluator and reports sub-1.0 confidence, so its output
// only surfaces when it clears the configured confidence floor or
// agrees with another provider.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) Analyze(ctx context.Context, signals []models.RiskSignal, analysis AnalysisContext) ([]models.PredictedRisk, error) {
	var risks []models.PredictedRisk

	for _, sig := range signals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sig.MetricValue == nil {
			continue
		}
		value := *sig.MetricValue

		switch sig.Kind {
		case models.RiskPodRestart:
			if value < 2 {
				continue
			}
			confidence := 0.5 + 0.1*value
			if confidence > 0.95 {
				confidence = 0.95
			}
			risks = append(risks, models.PredictedRisk{
				Type:       models.RiskPodRestart,
				Severity:   models.SeverityWarning,
				Name:       sig.ResourceName,
				Cluster:    sig.Cluster,
				Reason:     fmt.Sprintf("Restart pattern suggests instability (%d restarts)", int(value)),
				Metric:     fmt.Sprintf("%d restarts", int(value)),
				Confidence: confidence,
				Source:     models.ProviderSource(p.Name()),
			})

		case models.RiskResourceExhaustion:
			if value < 70 {
				continue
			}
			severity := models.SeverityWarning
			if value >= 90 {
				severity = models.SeverityCritical
			}
			risks = append(risks, models.PredictedRisk{
				Type:       models.RiskResourceExhaustion,
				Severity:   severity,
				Name:       sig.ResourceName,
				Cluster:    sig.Cluster,
				Reason:     fmt.Sprintf("Elevated %s usage at %.0f%%", sig.Reason, value),
				Metric:     fmt.Sprintf("%.0f%% %s", value, sig.Reason),
				Confidence: 0.55 + value/400,
				Source:     models.ProviderSource(p.Name()),
			})
		}
	}

	return risks, nil
}
