package reporter

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>K8s Risk Advisor Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #326ce5 0%, #1a4d8f 100%);
            color: white;
            padding: 24px 32px;
        }
        .header h1 { font-size: 22px; }
        .header p { opacity: 0.85; font-size: 13px; }
        .summary {
            display: flex;
            gap: 24px;
            padding: 20px 32px;
            border-bottom: 1px solid #e5e8ed;
        }
        .summary .stat { text-align: center; }
        .summary .stat .value { font-size: 28px; font-weight: 600; }
        .summary .stat .label { font-size: 12px; color: #777; text-transform: uppercase; }
        .critical { color: #d93025; }
        .warning { color: #e8710a; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 10px 16px; text-align: left; font-size: 14px; }
        th { background: #f8f9fb; color: #555; font-size: 12px; text-transform: uppercase; }
        tr { border-bottom: 1px solid #eef0f3; }
        .badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 10px;
            font-size: 12px;
            font-weight: 600;
        }
        .badge.critical { background: #fce8e6; }
        .badge.warning { background: #fef3e0; }
        .footer { padding: 16px 32px; font-size: 12px; color: #888; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Kubernetes Risk Report</h1>
        <p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
    </div>
    <div class="summary">
        <div class="stat"><div class="value critical">{{.CriticalCount}}</div><div class="label">Critical</div></div>
        <div class="stat"><div class="value warning">{{.WarningCount}}</div><div class="label">Warning</div></div>
        {{if .Stats}}{{if gt .Stats.TotalPredictions 0}}
        <div class="stat"><div class="value">{{printf "%.0f%%" (rate .Stats.AccuracyRate)}}</div><div class="label">Accuracy</div></div>
        {{end}}{{end}}
    </div>
    <table>
        <tr>
            <th>Severity</th><th>Type</th><th>Resource</th><th>Cluster</th>
            <th>Metric</th><th>Confidence</th><th>Source</th><th>Reason</th>
        </tr>
        {{range .Recommendations}}
        <tr>
            <td><span class="badge {{.Severity}}">{{.Severity}}</span></td>
            <td>{{.Type}}</td>
            <td>{{.Name}}</td>
            <td>{{.Cluster}}</td>
            <td>{{.Metric}}</td>
            <td>{{printf "%.2f" .Confidence}}</td>
            <td>{{.Source}}</td>
            <td>{{.Reason}}</td>
        </tr>
        {{end}}
    </table>
    <div class="footer">k8s-risk-advisor</div>
</div>
</body>
</html>
`

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	funcs := template.FuncMap{
		"rate": func(v float64) float64 { return v * 100 },
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(strings.TrimSpace(htmlTemplate))
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	if err := tmpl.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
