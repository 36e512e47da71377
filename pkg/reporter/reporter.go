package reporter

import (
	"time"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatCSV  ReportFormat = "csv"
)

// Report contains all data for generating reports
type Report struct {
	GeneratedAt     time.Time
	Recommendations []models.Recommendation
	Stats           *models.FeedbackStats

	CriticalCount int
	WarningCount  int
	SourceStats   map[string]*SourceStats
}

// SourceStats holds per-source counts of current recommendations
type SourceStats struct {
	Source        string
	Count         int
	CriticalCount int
	AvgConfidence float64
}

// Reporter generates risk and accuracy reports
type Reporter struct {
	format ReportFormat
}

// New creates a new reporter
func New(format ReportFormat) *Reporter {
	return &Reporter{
		format: format,
	}
}

// Generate builds a report from the current recommendation set and
// accuracy statistics. stats may be nil when no feedback exists.
func (r *Reporter) Generate(recommendations []models.Recommendation, stats *models.FeedbackStats) (*Report, error) {
	report := &Report{
		GeneratedAt:     time.Now(),
		Recommendations: recommendations,
		Stats:           stats,
		SourceStats:     make(map[string]*SourceStats),
	}

	r.calculateStats(report)

	return report, nil
}

func (r *Reporter) calculateStats(report *Report) {
	confidenceSums := make(map[string]float64)

	for _, rec := range report.Recommendations {
		switch rec.Severity {
		case models.SeverityCritical:
			report.CriticalCount++
		case models.SeverityWarning:
			report.WarningCount++
		}

		if _, exists := report.SourceStats[rec.Source]; !exists {
			report.SourceStats[rec.Source] = &SourceStats{Source: rec.Source}
		}
		stat := report.SourceStats[rec.Source]
		stat.Count++
		if rec.Severity == models.SeverityCritical {
			stat.CriticalCount++
		}
		confidenceSums[rec.Source] += rec.Confidence
	}

	for source, stat := range report.SourceStats {
		if stat.Count > 0 {
			stat.AvgConfidence = confidenceSums[source] / float64(stat.Count)
		}
	}
}
