package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// JSONHandler renders recommendations as JSON for machine consumers
type JSONHandler struct {
	writer io.Writer
}

func NewJSONHandler(writer io.Writer) *JSONHandler {
	return &JSONHandler{writer: writer}
}

func (h *JSONHandler) Format() string {
	return "json"
}

func (h *JSONHandler) DisplayRecommendations(ctx context.Context, recommendations []models.Recommendation) error {
	type wireRecommendation struct {
		ID         string  `json:"id"`
		Type       string  `json:"type"`
		Severity   string  `json:"severity"`
		Resource   string  `json:"resource"`
		Cluster    string  `json:"cluster,omitempty"`
		Reason     string  `json:"reason"`
		Metric     string  `json:"metric,omitempty"`
		Confidence float64 `json:"confidence"`
		Source     string  `json:"source"`
		State      string  `json:"state"`
	}

	wire := make([]wireRecommendation, 0, len(recommendations))
	for _, rec := range recommendations {
		wire = append(wire, wireRecommendation{
			ID:         rec.ID,
			Type:       string(rec.Type),
			Severity:   string(rec.Severity),
			Resource:   rec.Name,
			Cluster:    rec.Cluster,
			Reason:     rec.Reason,
			Metric:     rec.Metric,
			Confidence: rec.Confidence,
			Source:     rec.Source,
			State:      string(rec.State),
		})
	}

	encoder := json.NewEncoder(h.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(wire)
}

func (h *JSONHandler) DisplayStats(ctx context.Context, stats *models.FeedbackStats) error {
	encoder := json.NewEncoder(h.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}
