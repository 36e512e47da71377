package ranker

import (
	"testing"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

func risk(kind models.RiskKind, name string, severity models.Severity, confidence float64) models.PredictedRisk {
	return models.PredictedRisk{
		Type:       kind,
		Severity:   severity,
		Name:       name,
		Cluster:    "prod",
		Confidence: confidence,
	}
}

func TestRankOrdersBySeverityThenConfidence(t *testing.T) {
	heuristic := []models.PredictedRisk{
		risk(models.RiskPodRestart, "warn-low", models.SeverityWarning, 0.6),
		risk(models.RiskNodeOffline, "crit-a", models.SeverityCritical, 0.8),
		risk(models.RiskPodRestart, "warn-high", models.SeverityWarning, 0.9),
		risk(models.RiskResourceExhaustion, "crit-b", models.SeverityCritical, 0.95),
	}

	ranked := Rank(heuristic, nil, 10)
	want := []string{"crit-b", "crit-a", "warn-high", "warn-low"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d risks, got %d", len(want), len(ranked))
	}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("position %d = %s, want %s", i, ranked[i].Name, name)
		}
	}
}

func TestRankTieBreaksOnName(t *testing.T) {
	heuristic := []models.PredictedRisk{
		risk(models.RiskPodRestart, "pod-b", models.SeverityWarning, 0.7),
		risk(models.RiskPodRestart, "pod-a", models.SeverityWarning, 0.7),
		risk(models.RiskPodRestart, "pod-c", models.SeverityWarning, 0.7),
	}

	ranked := Rank(heuristic, nil, 10)
	want := []string{"pod-a", "pod-b", "pod-c"}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("position %d = %s, want %s", i, ranked[i].Name, name)
		}
	}
}

func TestRankDedupesAcrossSources(t *testing.T) {
	heuristic := []models.PredictedRisk{
		risk(models.RiskPodRestart, "api-server", models.SeverityWarning, 1.0),
	}
	ai := []models.PredictedRisk{
		risk(models.RiskPodRestart, "api-server", models.SeverityCritical, 0.7),
	}

	ranked := Rank(heuristic, ai, 10)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 risk after dedup, got %d", len(ranked))
	}
	// The more severe AI verdict replaces the heuristic one.
	if ranked[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical", ranked[0].Severity)
	}
}

func TestRankDedupSeverityTiePrefersConfidence(t *testing.T) {
	heuristic := []models.PredictedRisk{
		risk(models.RiskPodRestart, "api-server", models.SeverityWarning, 0.6),
	}
	ai := []models.PredictedRisk{
		risk(models.RiskPodRestart, "api-server", models.SeverityWarning, 0.9),
	}

	ranked := Rank(heuristic, ai, 10)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 risk, got %d", len(ranked))
	}
	if ranked[0].Confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", ranked[0].Confidence)
	}
}

func TestRankAppliesLimit(t *testing.T) {
	var heuristic []models.PredictedRisk
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		heuristic = append(heuristic, risk(models.RiskPodRestart, name, models.SeverityWarning, 0.8))
	}

	ranked := Rank(heuristic, nil, 3)
	if len(ranked) != 3 {
		t.Errorf("expected limit of 3, got %d", len(ranked))
	}

	if unlimited := Rank(heuristic, nil, 0); len(unlimited) != 5 {
		t.Errorf("limit 0 should not truncate, got %d", len(unlimited))
	}
}

func TestRankIdempotent(t *testing.T) {
	heuristic := []models.PredictedRisk{
		risk(models.RiskPodRestart, "pod-a", models.SeverityWarning, 0.7),
		risk(models.RiskNodeOffline, "node-1", models.SeverityCritical, 1.0),
		risk(models.RiskPodRestart, "pod-b", models.SeverityWarning, 0.7),
	}

	first := Rank(heuristic, nil, 10)
	second := Rank(first, nil, 10)
	if len(first) != len(second) {
		t.Fatalf("re-ranking changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("re-ranking changed position %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if ranked := Rank(nil, nil, 3); len(ranked) != 0 {
		t.Errorf("expected empty result, got %d", len(ranked))
	}
}
