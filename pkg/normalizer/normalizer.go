package normalizer

import (
	"fmt"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

// Reason tags attached to signals whose meaning is not carried by the
// metric value alone. Downstream rules branch on these instead of
// inspecting raw collector payloads.
const (
	ReasonNodeNotReady       = "node not ready"
	ReasonNodeCordoned       = "node cordoned"
	ReasonGPUCapacityMissing = "gpu capacity not reported"
	ReasonCPUUsage           = "cpu"
	ReasonMemoryUsage        = "memory"
)

// Normalize converts one telemetry snapshot into a flat list of risk
// signals. It is a pure function: no I/O, no clock, no mutation of the
// snapshot. A metric that was not reported produces no signal at all —
// absence of data is never normalized to a zero reading.
func Normalize(snap *models.Snapshot) []models.RiskSignal {
	if snap == nil {
		return nil
	}

	signals := make([]models.RiskSignal, 0, len(snap.Pods)+len(snap.Nodes)+2*len(snap.ClusterStats))

	for _, pod := range snap.Pods {
		signals = append(signals, models.RiskSignal{
			Kind:         models.RiskPodRestart,
			ResourceName: pod.Name,
			Cluster:      pod.Cluster,
			Namespace:    pod.Namespace,
			MetricValue:  models.Float(float64(pod.Restarts)),
			Reason:       pod.Reason,
		})
	}

	for _, node := range snap.Nodes {
		signals = append(signals, nodeSignals(node)...)
	}

	for _, stat := range snap.ClusterStats {
		if stat.CPUUsedPercent != nil {
			signals = append(signals, models.RiskSignal{
				Kind:         models.RiskResourceExhaustion,
				ResourceName: stat.Cluster,
				Cluster:      stat.Cluster,
				MetricValue:  stat.CPUUsedPercent,
				Reason:       ReasonCPUUsage,
			})
		}
		if stat.MemUsedPercent != nil {
			signals = append(signals, models.RiskSignal{
				Kind:         models.RiskResourceExhaustion,
				ResourceName: stat.Cluster,
				Cluster:      stat.Cluster,
				MetricValue:  stat.MemUsedPercent,
				Reason:       ReasonMemoryUsage,
			})
		}
	}

	return signals
}

func nodeSignals(node models.NodeInfo) []models.RiskSignal {
	var signals []models.RiskSignal

	if !node.Ready || node.Unschedulable {
		reason := ReasonNodeNotReady
		if node.Ready && node.Unschedulable {
			reason = ReasonNodeCordoned
		}
		if node.Reason != "" {
			reason = node.Reason
		}
		signals = append(signals, models.RiskSignal{
			Kind:         models.RiskNodeOffline,
			ResourceName: node.Name,
			Cluster:      node.Cluster,
			Reason:       reason,
		})
	}

	if node.GPUCount > 0 {
		headroom := float64(node.GPUCount - node.GPUAllocated)
		signals = append(signals, models.RiskSignal{
			Kind:         models.RiskGPUExhaustion,
			ResourceName: node.Name,
			Cluster:      node.Cluster,
			MetricValue:  models.Float(headroom),
			Reason:       fmt.Sprintf("%d/%d GPUs allocated", node.GPUAllocated, node.GPUCount),
		})
	} else if node.HasGPULabel {
		// GPU-labeled node reporting zero capacity: likely a driver or
		// device-plugin failure. The signal intentionally has no metric.
		signals = append(signals, models.RiskSignal{
			Kind:         models.RiskGPUExhaustion,
			ResourceName: node.Name,
			Cluster:      node.Cluster,
			Reason:       ReasonGPUCapacityMissing,
		})
	}

	return signals
}
