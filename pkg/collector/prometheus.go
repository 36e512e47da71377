package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// PrometheusSource reads cluster-level usage from a Prometheus server
type PrometheusSource struct {
	client v1.API
	url    string
}

func NewPrometheusSource(url string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: url,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusSource{
		client: v1.NewAPI(client),
		url:    url,
	}, nil
}

// ClusterUsage returns cluster-wide CPU and memory usage percentages.
// Either value is nil when its query returns no data; callers must
// treat nil as "unknown", not as 0%.
func (p *PrometheusSource) ClusterUsage(ctx context.Context) (*float64, *float64, error) {
	cpuQuery := `100 * (1 - avg(rate(node_cpu_seconds_total{mode="idle"}[5m])))`
	cpu, err := p.querySingle(ctx, cpuQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("CPU query failed: %w", err)
	}

	memQuery := `100 * (1 - sum(node_memory_MemAvailable_bytes) / sum(node_memory_MemTotal_bytes))`
	mem, err := p.querySingle(ctx, memQuery)
	if err != nil {
		return cpu, nil, fmt.Errorf("memory query failed: %w", err)
	}

	return cpu, mem, nil
}

// querySingle runs an instant query and returns the first sample, or
// nil when the query matched nothing.
func (p *PrometheusSource) querySingle(ctx context.Context, query string) (*float64, error) {
	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus warnings for %q: %v\n", query, warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok || len(vector) == 0 {
		return nil, nil
	}

	value := float64(vector[0].Value)
	return &value, nil
}
