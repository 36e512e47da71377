package consensus

import (
	"math"
	"testing"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

func risk(name string, severity models.Severity, confidence float64, source string) models.PredictedRisk {
	return models.PredictedRisk{
		Type:       models.RiskPodRestart,
		Severity:   severity,
		Name:       name,
		Cluster:    "prod",
		Confidence: confidence,
		Source:     source,
	}
}

func TestMergeTwoProvidersAgree(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("api-server", models.SeverityWarning, 0.6, models.ProviderSource("openai"))},
		"anthropic": {risk("api-server", models.SeverityWarning, 0.7, models.ProviderSource("anthropic"))},
	}

	out := Merge(byProvider, true)
	if len(out) != 1 {
		t.Fatalf("expected agreeing risks to collapse to 1, got %d", len(out))
	}

	got := out[0]
	// Best individual confidence 0.7 plus one agreement bonus of 0.05.
	if math.Abs(got.Confidence-0.75) > 1e-9 {
		t.Errorf("confidence = %f, want 0.75", got.Confidence)
	}
	if got.Confidence < 0.7 || got.Confidence > 1.0 {
		t.Errorf("consensus confidence %f outside [max individual, 1.0]", got.Confidence)
	}
	if got.Source != models.SourceConsensus {
		t.Errorf("source = %s, want %s", got.Source, models.SourceConsensus)
	}
}

func TestMergeKeepsMostSevereVerdict(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("api-server", models.SeverityWarning, 0.9, models.ProviderSource("openai"))},
		"anthropic": {risk("api-server", models.SeverityCritical, 0.5, models.ProviderSource("anthropic"))},
	}

	out := Merge(byProvider, true)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged risk, got %d", len(out))
	}
	if out[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical (most severe wins)", out[0].Severity)
	}
	// Confidence still starts from the best individual value.
	if math.Abs(out[0].Confidence-0.95) > 1e-9 {
		t.Errorf("confidence = %f, want 0.95", out[0].Confidence)
	}
}

func TestMergeBonusCapped(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		byProvider[name] = []models.PredictedRisk{
			risk("api-server", models.SeverityWarning, 0.5, models.ProviderSource(name)),
		}
	}

	out := Merge(byProvider, true)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged risk, got %d", len(out))
	}
	// Five extra agreements would be 0.25; bonus caps at 0.15.
	if math.Abs(out[0].Confidence-0.65) > 1e-9 {
		t.Errorf("confidence = %f, want 0.65", out[0].Confidence)
	}
}

func TestMergeConfidenceNeverExceedsOne(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("api-server", models.SeverityCritical, 0.98, models.ProviderSource("openai"))},
		"anthropic": {risk("api-server", models.SeverityCritical, 0.99, models.ProviderSource("anthropic"))},
	}

	out := Merge(byProvider, true)
	if out[0].Confidence > 1.0 {
		t.Errorf("confidence = %f, must not exceed 1.0", out[0].Confidence)
	}
}

func TestMergeDisjointRisksPassThrough(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("pod-a", models.SeverityWarning, 0.6, models.ProviderSource("openai"))},
		"anthropic": {risk("pod-b", models.SeverityWarning, 0.7, models.ProviderSource("anthropic"))},
	}

	out := Merge(byProvider, true)
	if len(out) != 2 {
		t.Fatalf("expected 2 disjoint risks, got %d", len(out))
	}
	for _, r := range out {
		if r.Source == models.SourceConsensus {
			t.Errorf("single-provider risk %s should keep its provider source", r.Name)
		}
	}
}

func TestMergeDisabled(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("api-server", models.SeverityWarning, 0.6, models.ProviderSource("openai"))},
		"anthropic": {risk("api-server", models.SeverityWarning, 0.7, models.ProviderSource("anthropic"))},
	}

	out := Merge(byProvider, false)
	if len(out) != 2 {
		t.Errorf("disabled consensus should pass risks through, got %d", len(out))
	}
}

func TestMergeDeterministicOrder(t *testing.T) {
	byProvider := map[string][]models.PredictedRisk{
		"openai":    {risk("pod-b", models.SeverityWarning, 0.6, models.ProviderSource("openai"))},
		"anthropic": {risk("pod-a", models.SeverityWarning, 0.7, models.ProviderSource("anthropic"))},
	}

	first := Merge(byProvider, true)
	for i := 0; i < 20; i++ {
		again := Merge(byProvider, true)
		for j := range first {
			if first[j].Name != again[j].Name {
				t.Fatalf("merge order changed between runs: %s vs %s", first[j].Name, again[j].Name)
			}
		}
	}
}
