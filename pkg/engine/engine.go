package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/aiprovider"
	"github.com/opscart/k8s-risk-advisor/pkg/collector"
	"github.com/opscart/k8s-risk-advisor/pkg/config"
	"github.com/opscart/k8s-risk-advisor/pkg/consensus"
	"github.com/opscart/k8s-risk-advisor/pkg/feedback"
	"github.com/opscart/k8s-risk-advisor/pkg/heuristics"
	"github.com/opscart/k8s-risk-advisor/pkg/lifecycle"
	"github.com/opscart/k8s-risk-advisor/pkg/models"
	"github.com/opscart/k8s-risk-advisor/pkg/normalizer"
	"github.com/opscart/k8s-risk-advisor/pkg/ranker"
	"github.com/opscart/k8s-risk-advisor/pkg/storage"
)

// maxTrackedRisks bounds how many ranked risks feed the lifecycle
// manager per cycle. The user-facing display cap is applied after
// dismissed and snoozed entries are excluded, so the ranker must keep
// more than the display limit alive.
const maxTrackedRisks = 50

// trendLookahead is how far ahead usage trends are projected
const trendLookahead = 30 * time.Minute

// TelemetrySource supplies raw snapshots on demand
type TelemetrySource interface {
	Collect(ctx context.Context) *models.Snapshot
}

// ActionRunner executes the remediation flow for an accepted
// recommendation. The engine does not wait for or interpret the
// outcome.
type ActionRunner interface {
	Run(ctx context.Context, action *models.ActionContext) error
}

// Engine is the predictive failure detection pipeline: it polls
// telemetry, evaluates heuristics, folds in AI analysis, and
// maintains the ranked recommendation set.
type Engine struct {
	cfg     *config.Config
	source  TelemetrySource
	cache   *collector.SnapshotCache
	adapter *aiprovider.Adapter
	trend   *heuristics.TrendTracker
	manager *lifecycle.Manager
	tracker *feedback.Tracker
	runner  ActionRunner
	clock   Clock
	verbose bool

	// aiMu guards the latest per-provider results, written by the AI
	// cycle and read by every heuristic cycle.
	aiMu     sync.Mutex
	aiRisks  map[string][]models.PredictedRisk
	aiSignal []models.RiskSignal
}

// Option configures optional engine collaborators
type Option func(*Engine)

// WithClock injects a clock, primarily for tests
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithActionRunner sets the runner invoked on accepted recommendations
func WithActionRunner(runner ActionRunner) Option {
	return func(e *Engine) { e.runner = runner }
}

// WithAdapter injects the AI analysis adapter
func WithAdapter(adapter *aiprovider.Adapter) Option {
	return func(e *Engine) { e.adapter = adapter }
}

// New creates an engine. store persists recommendation state and
// feedback; source supplies telemetry snapshots.
func New(cfg *config.Config, source TelemetrySource, store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		source:  source,
		cache:   collector.NewSnapshotCache(cfg.PollInterval),
		trend:   heuristics.NewTrendTracker(trendLookahead),
		manager: lifecycle.New(store, cfg.DisplayLimit, cfg.SnoozeDuration, cfg.RetentionCycles),
		tracker: feedback.New(store),
		clock:   NewRealClock(),
		verbose: cfg.Verbose,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.cache.Subscribe(func(*models.Snapshot) {
		snapshotsCollected.Inc()
	})

	if e.adapter == nil && cfg.AIEnabled {
		providers, err := aiprovider.NewProviders(cfg.AIProviders)
		if err != nil {
			fmt.Printf("[WARN] AI analysis disabled: %v\n", err)
		} else {
			e.adapter = aiprovider.NewAdapter(providers, cfg.ProviderTimeout, cfg.MinConfidence())
		}
	}

	return e
}

// Run drives the evaluation loop until ctx is cancelled. Heuristics
// run every poll interval; AI analysis runs on its own coarser timer.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.manager.Load(ctx); err != nil {
		return err
	}

	pollTicker := e.clock.NewTicker(e.cfg.PollInterval)
	defer pollTicker.Stop()

	var aiChan <-chan time.Time
	if e.adapter != nil {
		aiTicker := e.clock.NewTicker(e.cfg.AIInterval())
		defer aiTicker.Stop()
		aiChan = aiTicker.Chan()
	}

	// Prime the first cycle immediately rather than waiting a tick
	e.RunCycle(ctx)
	if e.adapter != nil {
		e.RunAICycle(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pollTicker.Chan():
			e.RunCycle(ctx)
		case <-aiChan:
			e.RunAICycle(ctx)
		}
	}
}

// RunCycle performs one heuristic evaluation cycle: collect (or reuse
// cached) telemetry, normalize, evaluate, merge in the latest AI
// results, rank, and reconcile recommendation state.
func (e *Engine) RunCycle(ctx context.Context) {
	start := time.Now()
	now := e.clock.Now()

	snap := e.cache.Get()
	if snap == nil {
		snap = e.source.Collect(ctx)
		e.cache.Set(snap)
	}
	if ctx.Err() != nil {
		return
	}

	signals := normalizer.Normalize(snap)
	risks := heuristics.Evaluate(signals, e.cfg.Thresholds)

	e.trend.Observe(snap.ClusterStats, now)
	risks = append(risks, e.trend.Predict(e.cfg.Thresholds, now)...)

	e.aiMu.Lock()
	e.aiSignal = signals
	aiRisks := consensus.Merge(e.aiRisks, e.cfg.ConsensusMode)
	e.aiMu.Unlock()

	ranked := ranker.Rank(risks, aiRisks, maxTrackedRisks)

	if err := e.manager.Reconcile(ctx, ranked, now); err != nil {
		fmt.Printf("[WARN] Reconcile failed: %v\n", err)
		cycleTotal.WithLabelValues("error").Inc()
	} else {
		cycleTotal.WithLabelValues("success").Inc()
	}

	e.observeMetrics(ranked, now, start)

	if e.verbose {
		fmt.Printf("[DEBUG] Cycle complete: %d signals, %d ranked risks, %d pending\n",
			len(signals), len(ranked), len(e.manager.Pending(now)))
	}
}

// RunAICycle submits the latest signal snapshot to all providers
func (e *Engine) RunAICycle(ctx context.Context) {
	if e.adapter == nil {
		return
	}

	e.aiMu.Lock()
	signals := e.aiSignal
	e.aiMu.Unlock()

	if len(signals) == 0 {
		return
	}

	results := e.adapter.Run(ctx, signals, e.clock.Now())
	if results == nil {
		// Cancelled mid-cycle; discard rather than merge partials
		aiCycleTotal.WithLabelValues("error").Inc()
		return
	}
	aiCycleTotal.WithLabelValues("success").Inc()

	e.aiMu.Lock()
	e.aiRisks = results
	e.aiMu.Unlock()
}

func (e *Engine) observeMetrics(ranked []models.PredictedRisk, now time.Time, start time.Time) {
	cycleDuration.Observe(time.Since(start).Seconds())

	counts := map[models.Severity]int{}
	for _, r := range ranked {
		counts[r.Severity]++
	}
	for _, severity := range []models.Severity{models.SeverityWarning, models.SeverityCritical} {
		risksEmitted.WithLabelValues(string(severity)).Set(float64(counts[severity]))
	}
	pendingRecommendations.Set(float64(len(e.manager.Pending(now))))
}

// GetPendingRecommendations returns the current top-N pending
// recommendations, freshly ranked.
func (e *Engine) GetPendingRecommendations() []models.Recommendation {
	return e.manager.Pending(e.clock.Now())
}

// Accept marks the recommendation accepted and hands its action
// context to the runner. The runner's outcome is not awaited.
func (e *Engine) Accept(ctx context.Context, id string) error {
	action, err := e.manager.Accept(ctx, id, e.clock.Now())
	if err != nil {
		return err
	}

	if e.runner != nil {
		go func() {
			if err := e.runner.Run(context.WithoutCancel(ctx), action); err != nil {
				fmt.Printf("[WARN] Action runner failed for %s: %v\n", action.RecommendationID, err)
			}
		}()
	}
	return nil
}

// Dismiss suppresses the recommendation until its risk resolves and
// reappears.
func (e *Engine) Dismiss(ctx context.Context, id string) error {
	return e.manager.Dismiss(ctx, id, e.clock.Now())
}

// Snooze suppresses the recommendation for the given duration (the
// configured default when zero).
func (e *Engine) Snooze(ctx context.Context, id string, duration time.Duration) error {
	return e.manager.Snooze(ctx, id, duration, e.clock.Now())
}

// RecordFeedback records a user verdict on a recommendation, tagged
// with the source that produced it.
func (e *Engine) RecordFeedback(ctx context.Context, id string, accurate bool) error {
	rec, ok := e.manager.Get(id)
	if !ok {
		return fmt.Errorf("recommendation not found: %s", id)
	}
	return e.tracker.Record(ctx, id, rec.Source, accurate)
}

// GetStats returns aggregate feedback accuracy statistics
func (e *Engine) GetStats(ctx context.Context) (*models.FeedbackStats, error) {
	return e.tracker.Stats(ctx)
}

// ClearFeedback bulk-clears the feedback log
func (e *Engine) ClearFeedback(ctx context.Context) error {
	return e.tracker.Clear(ctx)
}

// Manager exposes the lifecycle manager, mainly for one-shot CLI use
func (e *Engine) Manager() *lifecycle.Manager {
	return e.manager
}
