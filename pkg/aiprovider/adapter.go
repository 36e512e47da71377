package aiprovider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// Adapter fans an analysis request out to all configured providers
// concurrently and collects their filtered outputs per provider.
type Adapter struct {
	providers     []Provider
	timeout       time.Duration
	minConfidence float64
}

// NewAdapter creates an adapter. timeout applies per provider call;
// minConfidence is the [0,1] floor below which provider risks are
// discarded before any merging.
func NewAdapter(providers []Provider, timeout time.Duration, minConfidence float64) *Adapter {
	return &Adapter{
		providers:     providers,
		timeout:       timeout,
		minConfidence: minConfidence,
	}
}

// Run submits the signal snapshot to every provider concurrently and
// returns results keyed by provider name. A provider that errors or
// times out contributes an empty result for the cycle; it never fails
// the cycle or blocks the other providers. If the parent context is
// cancelled mid-cycle, partial results are discarded.
func (a *Adapter) Run(ctx context.Context, signals []models.RiskSignal, collectedAt time.Time) map[string][]models.PredictedRisk {
	if len(a.providers) == 0 {
		return nil
	}

	analysis := BuildContext(signals, collectedAt)

	var mu sync.Mutex
	results := make(map[string][]models.PredictedRisk, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for _, provider := range a.providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			risks, err := provider.Analyze(callCtx, signals, analysis)
			if err != nil {
				// Fail-soft: this provider sits the cycle out
				return nil
			}

			filtered := a.filter(risks)
			mu.Lock()
			results[provider.Name()] = filtered
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		// Torn down mid-cycle: nothing gets merged
		return nil
	}
	return results
}

// filter drops risks below the configured confidence floor
func (a *Adapter) filter(risks []models.PredictedRisk) []models.PredictedRisk {
	filtered := make([]models.PredictedRisk, 0, len(risks))
	for _, r := range risks {
		if r.Confidence >= a.minConfidence {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
