package output

import (
	"context"
	"fmt"
	"io"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// TextHandler renders recommendations as plain text for the terminal
type TextHandler struct {
	writer io.Writer
}

func NewTextHandler(writer io.Writer) *TextHandler {
	return &TextHandler{writer: writer}
}

func (h *TextHandler) Format() string {
	return "text"
}

func (h *TextHandler) DisplayRecommendations(ctx context.Context, recommendations []models.Recommendation) error {
	if len(recommendations) == 0 {
		fmt.Fprintln(h.writer, "No recommendations — all monitored clusters look healthy.")
		return nil
	}

	for i, rec := range recommendations {
		marker := "!"
		if rec.Severity == models.SeverityCritical {
			marker = "!!"
		}
		fmt.Fprintf(h.writer, "%d. [%s] %s %s", i+1, rec.Severity, marker, rec.Reason)
		if rec.Cluster != "" {
			fmt.Fprintf(h.writer, " (cluster: %s)", rec.Cluster)
		}
		fmt.Fprintln(h.writer)
		if rec.Metric != "" {
			fmt.Fprintf(h.writer, "   Metric: %s\n", rec.Metric)
		}
		fmt.Fprintf(h.writer, "   Confidence: %.0f%%  Source: %s  ID: %s\n",
			rec.Confidence*100, rec.Source, rec.ID)
	}
	return nil
}

func (h *TextHandler) DisplayStats(ctx context.Context, stats *models.FeedbackStats) error {
	if stats == nil || stats.TotalPredictions == 0 {
		fmt.Fprintln(h.writer, "No feedback recorded yet.")
		return nil
	}

	fmt.Fprintf(h.writer, "Prediction accuracy: %.0f%% (%d accurate / %d total)\n",
		stats.AccuracyRate*100, stats.AccurateCount, stats.TotalPredictions)
	for provider, providerStats := range stats.ByProvider {
		fmt.Fprintf(h.writer, "  %s: %.0f%% (%d/%d)\n",
			provider, providerStats.AccuracyRate*100, providerStats.Accurate, providerStats.Total)
	}
	return nil
}
