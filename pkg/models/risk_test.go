package models

import (
	"testing"
	"time"
)

func TestPredictedRiskIDStable(t *testing.T) {
	a := PredictedRisk{
		Type: RiskPodRestart, Name: "api-server", Cluster: "prod",
		Severity: SeverityWarning, Confidence: 0.7,
	}
	b := PredictedRisk{
		Type: RiskPodRestart, Name: "api-server", Cluster: "prod",
		Severity: SeverityCritical, Confidence: 0.95, Reason: "different cycle",
	}

	// Identity depends only on (type, resource, cluster).
	if a.ID() != b.ID() {
		t.Errorf("same problem produced different ids: %s vs %s", a.ID(), b.ID())
	}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %s vs %s", a.Key(), b.Key())
	}

	c := a
	c.Cluster = "staging"
	if a.ID() == c.ID() {
		t.Error("different clusters must produce different ids")
	}

	d := a
	d.Type = RiskNodeOffline
	if a.ID() == d.ID() {
		t.Error("different risk types must produce different ids")
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityCritical.Rank() <= SeverityWarning.Rank() {
		t.Error("critical must outrank warning")
	}
}

func TestProviderSource(t *testing.T) {
	if got := ProviderSource("openai"); got != "provider:openai" {
		t.Errorf("source = %s", got)
	}
}

func TestSnoozing(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)

	rec := &Recommendation{State: StateSnoozed, SnoozedUntil: &until}
	if !rec.Snoozing(now) {
		t.Error("expected snoozing before expiry")
	}
	if rec.Snoozing(until) {
		t.Error("expected not snoozing at expiry")
	}
	if rec.Snoozing(until.Add(time.Minute)) {
		t.Error("expected not snoozing after expiry")
	}

	pending := &Recommendation{State: StatePending, SnoozedUntil: &until}
	if pending.Snoozing(now) {
		t.Error("pending recommendation is never snoozing")
	}

	noDeadline := &Recommendation{State: StateSnoozed}
	if noDeadline.Snoozing(now) {
		t.Error("snoozed without a deadline is not snoozing")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	var nilSnap *Snapshot
	if !nilSnap.Empty() {
		t.Error("nil snapshot is empty")
	}
	if !(&Snapshot{CollectedAt: time.Now()}).Empty() {
		t.Error("snapshot without telemetry is empty")
	}
	if (&Snapshot{Pods: []PodInfo{{Name: "a"}}}).Empty() {
		t.Error("snapshot with pods is not empty")
	}
}
