package aiprovider

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

func TestParseRisks(t *testing.T) {
	reply := `{"risks":[
		{"type":"pod-restart","severity":"critical","resource":"api-server","cluster":"prod","reason":"crash loop","metric":"6 restarts","confidence":0.85},
		{"type":"resource-exhaustion","severity":"warning","resource":"prod","cluster":"prod","reason":"memory climbing","confidence":0.6}
	]}`

	risks, err := parseRisks(reply, "openai")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(risks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(risks))
	}

	got := risks[0]
	if got.Type != models.RiskPodRestart {
		t.Errorf("type = %s", got.Type)
	}
	if got.Severity != models.SeverityCritical {
		t.Errorf("severity = %s", got.Severity)
	}
	if got.Confidence != 0.85 {
		t.Errorf("confidence = %f", got.Confidence)
	}
	if got.Source != "provider:openai" {
		t.Errorf("source = %s, want provider:openai", got.Source)
	}
}

func TestParseRisksStripsMarkdownFences(t *testing.T) {
	reply := "```json\n{\"risks\":[{\"type\":\"pod-restart\",\"severity\":\"warning\",\"resource\":\"pod-a\",\"cluster\":\"prod\",\"confidence\":0.7}]}\n```"

	risks, err := parseRisks(reply, "anthropic")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(risks) != 1 {
		t.Errorf("expected 1 risk, got %d", len(risks))
	}
}

func TestParseRisksClampsConfidence(t *testing.T) {
	reply := `{"risks":[
		{"type":"pod-restart","severity":"warning","resource":"a","cluster":"prod","confidence":1.7},
		{"type":"pod-restart","severity":"warning","resource":"b","cluster":"prod","confidence":-0.3}
	]}`

	risks, err := parseRisks(reply, "openai")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if risks[0].Confidence != 1.0 {
		t.Errorf("over-range confidence = %f, want 1.0", risks[0].Confidence)
	}
	if risks[1].Confidence != 0 {
		t.Errorf("under-range confidence = %f, want 0", risks[1].Confidence)
	}
}

func TestParseRisksSkipsMalformedEntries(t *testing.T) {
	reply := `{"risks":[
		{"type":"","severity":"warning","resource":"a","cluster":"prod","confidence":0.8},
		{"type":"pod-restart","severity":"warning","resource":"","cluster":"prod","confidence":0.8},
		{"type":"pod-restart","severity":"warning","resource":"ok","cluster":"prod","confidence":0.8}
	]}`

	risks, err := parseRisks(reply, "openai")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(risks) != 1 || risks[0].Name != "ok" {
		t.Errorf("expected only the well-formed entry, got %+v", risks)
	}
}

func TestParseRisksRejectsGarbage(t *testing.T) {
	if _, err := parseRisks("I think pod-a looks unhealthy", "openai"); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}

func TestParseRisksUnknownSeverityDefaultsToWarning(t *testing.T) {
	reply := `{"risks":[{"type":"pod-restart","severity":"catastrophic","resource":"a","cluster":"prod","confidence":0.8}]}`

	risks, err := parseRisks(reply, "openai")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if risks[0].Severity != models.SeverityWarning {
		t.Errorf("severity = %s, want warning", risks[0].Severity)
	}
}

func TestBuildUserPromptCapsSignals(t *testing.T) {
	var signals []models.RiskSignal
	for i := 0; i < 50; i++ {
		signals = append(signals, models.RiskSignal{
			Kind:         models.RiskPodRestart,
			ResourceName: strings.Repeat("x", 5),
			Cluster:      "prod",
			MetricValue:  models.Float(float64(i)),
		})
	}

	prompt, err := buildUserPrompt(signals, BuildContext(signals, time.Now()))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var payload struct {
		Signals []json.RawMessage `json:"signals"`
	}
	if err := json.Unmarshal([]byte(prompt), &payload); err != nil {
		t.Fatalf("prompt is not valid JSON: %v", err)
	}
	if len(payload.Signals) != maxContextItems {
		t.Errorf("signal sample = %d, want capped at %d", len(payload.Signals), maxContextItems)
	}
}

func TestBuildContext(t *testing.T) {
	signals := []models.RiskSignal{
		{Kind: models.RiskPodRestart, ResourceName: "pod-a", Cluster: "prod"},
		{Kind: models.RiskPodRestart, ResourceName: "pod-b", Cluster: "prod"},
		{Kind: models.RiskNodeOffline, ResourceName: "node-1", Cluster: "staging"},
	}

	analysis := BuildContext(signals, time.Now())
	if analysis.SignalCounts[models.RiskPodRestart] != 2 {
		t.Errorf("pod-restart count = %d, want 2", analysis.SignalCounts[models.RiskPodRestart])
	}
	if analysis.SignalCounts[models.RiskNodeOffline] != 1 {
		t.Errorf("node-offline count = %d, want 1", analysis.SignalCounts[models.RiskNodeOffline])
	}
	if len(analysis.Clusters) != 2 {
		t.Errorf("clusters = %v, want 2 entries", analysis.Clusters)
	}
}
