package aiprovider

import (
	"context"
	"testing"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

func TestNewProvider(t *testing.T) {
	for _, id := range []string{"openai", "anthropic", "local"} {
		p, err := NewProvider(id)
		if err != nil {
			t.Errorf("NewProvider(%s) failed: %v", id, err)
			continue
		}
		if p.Name() != id {
			t.Errorf("provider name = %s, want %s", p.Name(), id)
		}
	}

	if _, err := NewProvider("gemini"); err == nil {
		t.Error("expected error for unknown provider id")
	}
}

func TestNewProvidersHardErrorOnBadID(t *testing.T) {
	if _, err := NewProviders([]string{"local", "bogus"}); err == nil {
		t.Error("a misconfigured provider id must be a hard error")
	}

	providers, err := NewProviders([]string{"local", "openai"})
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if len(providers) != 2 {
		t.Errorf("provider count = %d, want 2", len(providers))
	}
}

func TestDetect(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	if ids := Detect(); len(ids) != 1 || ids[0] != "local" {
		t.Errorf("no keys: ids = %v, want [local]", ids)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if ids := Detect(); len(ids) != 1 || ids[0] != "openai" {
		t.Errorf("openai key: ids = %v, want [openai]", ids)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	if ids := Detect(); len(ids) != 2 {
		t.Errorf("both keys: ids = %v, want 2 entries", ids)
	}
}

func TestLocalProviderRestartPattern(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	signals := []models.RiskSignal{
		{Kind: models.RiskPodRestart, ResourceName: "stable", Cluster: "prod", MetricValue: models.Float(1)},
		{Kind: models.RiskPodRestart, ResourceName: "flappy", Cluster: "prod", MetricValue: models.Float(3)},
		{Kind: models.RiskPodRestart, ResourceName: "no-metric", Cluster: "prod"},
	}

	risks, err := p.Analyze(ctx, signals, AnalysisContext{})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(risks) != 1 {
		t.Fatalf("expected 1 risk, got %d", len(risks))
	}
	if risks[0].Name != "flappy" {
		t.Errorf("name = %s, want flappy", risks[0].Name)
	}
	if risks[0].Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8 for 3 restarts", risks[0].Confidence)
	}
	if risks[0].Source != "provider:local" {
		t.Errorf("source = %s", risks[0].Source)
	}
}

func TestLocalProviderConfidenceCapped(t *testing.T) {
	p := NewLocalProvider()

	signals := []models.RiskSignal{
		{Kind: models.RiskPodRestart, ResourceName: "very-flappy", Cluster: "prod", MetricValue: models.Float(50)},
	}
	risks, err := p.Analyze(context.Background(), signals, AnalysisContext{})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if risks[0].Confidence != 0.95 {
		t.Errorf("confidence = %f, want capped at 0.95", risks[0].Confidence)
	}
}

func TestLocalProviderResourceUsage(t *testing.T) {
	p := NewLocalProvider()

	signals := []models.RiskSignal{
		{Kind: models.RiskResourceExhaustion, ResourceName: "prod", Cluster: "prod", MetricValue: models.Float(65), Reason: "cpu"},
		{Kind: models.RiskResourceExhaustion, ResourceName: "staging", Cluster: "staging", MetricValue: models.Float(92), Reason: "memory"},
	}
	risks, err := p.Analyze(context.Background(), signals, AnalysisContext{})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(risks) != 1 {
		t.Fatalf("expected 1 risk, got %d", len(risks))
	}
	if risks[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical at 92%%", risks[0].Severity)
	}
}

func TestLocalProviderHonorsCancellation(t *testing.T) {
	p := NewLocalProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	signals := []models.RiskSignal{
		{Kind: models.RiskPodRestart, ResourceName: "pod-a", Cluster: "prod", MetricValue: models.Float(5)},
	}
	if _, err := p.Analyze(ctx, signals, AnalysisContext{}); err == nil {
		t.Error("expected context cancellation error")
	}
}
