package lifecycle

import (
	"fmt"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// buildActionContext assembles the structured payload handed to the
// external action runner when a recommendation is accepted.
func buildActionContext(rec *models.Recommendation, now time.Time) *models.ActionContext {
	return &models.ActionContext{
		RecommendationID: rec.ID,
		RiskType:         rec.Type,
		Severity:         rec.Severity,
		Resource:         rec.Name,
		Cluster:          rec.Cluster,
		Reason:           rec.Reason,
		Metric:           rec.Metric,
		Confidence:       rec.Confidence,
		Source:           rec.Source,
		SuggestedCommand: suggestedCommand(rec),
		AcceptedAt:       now,
	}
}

// suggestedCommand generates a starting-point kubectl command for the
// accepted risk. The runner decides what to actually execute.
func suggestedCommand(rec *models.Recommendation) string {
	switch rec.Type {
	case models.RiskPodRestart:
		return fmt.Sprintf("kubectl describe pod %s", rec.Name)
	case models.RiskNodeOffline:
		return fmt.Sprintf("kubectl describe node %s", rec.Name)
	case models.RiskGPUExhaustion:
		return fmt.Sprintf("kubectl describe node %s | grep -A5 'Allocated resources'", rec.Name)
	case models.RiskResourceExhaustion:
		return "kubectl top nodes"
	case models.RiskDeploymentDegraded:
		return fmt.Sprintf("kubectl rollout status deployment %s", rec.Name)
	default:
		return ""
	}
}
