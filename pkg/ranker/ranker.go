package ranker

import (
	"sort"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// Rank merges heuristic and AI risks, dedupes by (type, resource,
// cluster), orders by severity then confidence, and truncates to
// limit. On a key collision the more severe entry wins; on a severity
// tie the higher confidence wins. Ordering is fully deterministic:
// equal-priority entries tie-break on resource name so re-renders do
// not reorder between cycles.
func Rank(heuristic, ai []models.PredictedRisk, limit int) []models.PredictedRisk {
	byKey := make(map[string]models.PredictedRisk)
	var order []string

	consider := func(r models.PredictedRisk) {
		key := r.Key()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = r
			order = append(order, key)
			return
		}
		if better(r, existing) {
			byKey[key] = r
		}
	}

	for _, r := range heuristic {
		consider(r)
	}
	for _, r := range ai {
		consider(r)
	}

	ranked := make([]models.PredictedRisk, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, byKey[key])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[j], ranked[i])
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// better reports whether candidate should replace existing for the
// same dedup key.
func better(candidate, existing models.PredictedRisk) bool {
	if candidate.Severity.Rank() != existing.Severity.Rank() {
		return candidate.Severity.Rank() > existing.Severity.Rank()
	}
	return candidate.Confidence > existing.Confidence
}

// Less defines the display order: severity desc, confidence desc,
// name asc. Exported so the lifecycle manager ranks pending
// recommendations identically.
func Less(a, b models.PredictedRisk) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() < b.Severity.Rank()
	}
	if a.Confidence != b.Confidence {
		return a.Confidence < b.Confidence
	}
	return a.Name > b.Name
}
