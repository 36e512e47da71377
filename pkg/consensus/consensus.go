package consensus

import (
	"sort"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

const (
	// agreementBonus is added to the best individual confidence for
	// each additional provider flagging the same risk.
	agreementBonus = 0.05
	// maxBonus caps the total consensus boost.
	maxBonus = 0.15
)

// Merge combines per-provider risk lists. When consensus mode is
// enabled and two or more providers flag the same (type, resource,
// cluster) key, the duplicates collapse into a single consensus risk
// whose confidence is the best individual confidence plus an agreement
// bonus, capped at 1.0. Disabled, provider outputs pass through
// unmerged. Output order is deterministic.
func Merge(byProvider map[string][]models.PredictedRisk, enabled bool) []models.PredictedRisk {
	providers := make([]string, 0, len(byProvider))
	for name := range byProvider {
		providers = append(providers, name)
	}
	sort.Strings(providers)

	if !enabled {
		var out []models.PredictedRisk
		for _, name := range providers {
			out = append(out, byProvider[name]...)
		}
		return out
	}

	type group struct {
		risks     []models.PredictedRisk
		providers map[string]bool
	}

	groups := make(map[string]*group)
	var order []string

	for _, name := range providers {
		for _, risk := range byProvider[name] {
			key := risk.Key()
			g, ok := groups[key]
			if !ok {
				g = &group{providers: make(map[string]bool)}
				groups[key] = g
				order = append(order, key)
			}
			g.risks = append(g.risks, risk)
			g.providers[name] = true
		}
	}

	var out []models.PredictedRisk
	for _, key := range order {
		g := groups[key]
		if len(g.providers) < 2 {
			out = append(out, g.risks...)
			continue
		}
		out = append(out, merge(g.risks, len(g.providers)))
	}
	return out
}

// merge collapses agreeing provider risks into one consensus risk,
// keeping the most severe verdict among them.
func merge(risks []models.PredictedRisk, agreeing int) models.PredictedRisk {
	best := risks[0]
	maxConfidence := risks[0].Confidence
	for _, r := range risks[1:] {
		if r.Severity.Rank() > best.Severity.Rank() {
			best = r
		}
		if r.Confidence > maxConfidence {
			maxConfidence = r.Confidence
		}
	}

	bonus := agreementBonus * float64(agreeing-1)
	if bonus > maxBonus {
		bonus = maxBonus
	}
	confidence := maxConfidence + bonus
	if confidence > 1.0 {
		confidence = 1.0
	}

	merged := best
	merged.Confidence = confidence
	merged.Source = models.SourceConsensus
	return merged
}
