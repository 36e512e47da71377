package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"ID",
		"Type",
		"Severity",
		"Resource",
		"Cluster",
		"Metric",
		"Confidence",
		"Source",
		"State",
		"Reason",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Recommendations {
		row := []string{
			rec.ID,
			string(rec.Type),
			string(rec.Severity),
			rec.Name,
			rec.Cluster,
			rec.Metric,
			fmt.Sprintf("%.2f", rec.Confidence),
			rec.Source,
			string(rec.State),
			rec.Reason,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Summary rows
	w.Write([]string{})
	w.Write([]string{"SUMMARY"})
	w.Write([]string{"Critical", fmt.Sprintf("%d", report.CriticalCount)})
	w.Write([]string{"Warning", fmt.Sprintf("%d", report.WarningCount)})

	if report.Stats != nil && report.Stats.TotalPredictions > 0 {
		w.Write([]string{})
		w.Write([]string{"ACCURACY"})
		w.Write([]string{"Total Feedback", fmt.Sprintf("%d", report.Stats.TotalPredictions)})
		w.Write([]string{"Accuracy Rate", fmt.Sprintf("%.0f%%", report.Stats.AccuracyRate*100)})
		for provider, stats := range report.Stats.ByProvider {
			w.Write([]string{
				fmt.Sprintf("Accuracy (%s)", provider),
				fmt.Sprintf("%.0f%% of %d", stats.AccuracyRate*100, stats.Total),
			})
		}
	}

	w.Flush()
	return w.Error()
}
