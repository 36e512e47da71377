package aiprovider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

const systemPrompt = `You are a Kubernetes reliability analyst. Given cluster telemetry signals,
identify workloads and nodes at risk of failure. Respond with JSON only, in the form:
{"risks":[{"type":"pod-restart|node-offline|node-pressure|gpu-exhaustion|resource-exhaustion|security|deployment-degraded",
"severity":"warning|critical","resource":"<name>","cluster":"<cluster>","reason":"<short explanation>",
"metric":"<display value>","confidence":0.0}]}
Only include risks you have concrete evidence for. Confidence is your own certainty in [0,1].`

// wireRisk is the JSON shape providers are asked to respond with
type wireRisk struct {
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Resource   string  `json:"resource"`
	Cluster    string  `json:"cluster"`
	Reason     string  `json:"reason"`
	Metric     string  `json:"metric"`
	Confidence float64 `json:"confidence"`
}

type wireResponse struct {
	Risks []wireRisk `json:"risks"`
}

// buildUserPrompt serializes the capped signal sample and analysis
// context into the user message sent to a provider.
func buildUserPrompt(signals []models.RiskSignal, analysis AnalysisContext) (string, error) {
	type wireSignal struct {
		Kind     string   `json:"kind"`
		Resource string   `json:"resource"`
		Cluster  string   `json:"cluster"`
		Metric   *float64 `json:"metric,omitempty"`
		Reason   string   `json:"reason,omitempty"`
	}

	capped := capSignals(signals)
	wire := make([]wireSignal, 0, len(capped))
	for _, sig := range capped {
		wire = append(wire, wireSignal{
			Kind:     string(sig.Kind),
			Resource: sig.ResourceName,
			Cluster:  sig.Cluster,
			Metric:   sig.MetricValue,
			Reason:   sig.Reason,
		})
	}

	payload := struct {
		Signals []wireSignal    `json:"signals"`
		Context AnalysisContext `json:"context"`
	}{wire, analysis}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis payload: %w", err)
	}
	return string(data), nil
}

// parseRisks decodes a provider's JSON reply into predicted risks
// tagged with the provider's source id. Unparseable replies are an
// error; individually malformed entries are skipped.
func parseRisks(reply, providerID string) ([]models.PredictedRisk, error) {
	// Some models wrap JSON in markdown fences despite instructions
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var resp wireResponse
	if err := json.Unmarshal([]byte(reply), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	risks := make([]models.PredictedRisk, 0, len(resp.Risks))
	for _, w := range resp.Risks {
		if w.Resource == "" || w.Type == "" {
			continue
		}
		severity := models.SeverityWarning
		if w.Severity == string(models.SeverityCritical) {
			severity = models.SeverityCritical
		}
		confidence := w.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		risks = append(risks, models.PredictedRisk{
			Type:       models.RiskKind(w.Type),
			Severity:   severity,
			Name:       w.Resource,
			Cluster:    w.Cluster,
			Reason:     w.Reason,
			Metric:     w.Metric,
			Confidence: confidence,
			Source:     models.ProviderSource(providerID),
		})
	}
	return risks, nil
}
