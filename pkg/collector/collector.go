package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

const gpuResourceName = corev1.ResourceName("nvidia.com/gpu")

// gpuNodeLabels mark a node as GPU-capable even when it reports no
// GPU capacity (e.g., a broken device plugin).
var gpuNodeLabels = []string{
	"nvidia.com/gpu.present",
	"cloud.google.com/gke-accelerator",
	"node.kubernetes.io/instance-type-gpu",
}

type clusterClient struct {
	name          string
	clientset     kubernetes.Interface
	metricsClient metricsv.Interface
}

// Collector gathers raw telemetry from one or more clusters. Each
// failing source drops its section of the snapshot for the cycle;
// missing telemetry is never reported as healthy values.
type Collector struct {
	clusters   []clusterClient
	prometheus *PrometheusSource
	verbose    bool
}

// New builds a collector for the given kubeconfig contexts. An empty
// context list uses the current kubeconfig context. prometheusURL is
// optional; without it cluster usage comes from the metrics API.
func New(kubeContexts []string, prometheusURL string, verbose bool) (*Collector, error) {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	if len(kubeContexts) == 0 {
		kubeContexts = []string{""}
	}

	c := &Collector{verbose: verbose}

	for _, contextName := range kubeContexts {
		rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
		loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

		restConfig, err := loader.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build config for context %q: %w", contextName, err)
		}

		clientset, err := kubernetes.NewForConfig(restConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create clientset for context %q: %w", contextName, err)
		}

		metricsClient, err := metricsv.NewForConfig(restConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics client for context %q: %w", contextName, err)
		}

		name := contextName
		if name == "" {
			raw, err := loader.RawConfig()
			if err == nil && raw.CurrentContext != "" {
				name = raw.CurrentContext
			} else {
				name = "default"
			}
		}

		c.clusters = append(c.clusters, clusterClient{
			name:          name,
			clientset:     clientset,
			metricsClient: metricsClient,
		})
	}

	if prometheusURL != "" {
		source, err := NewPrometheusSource(prometheusURL)
		if err != nil {
			return nil, err
		}
		c.prometheus = source
	}

	return c, nil
}

// Collect gathers one snapshot across all configured clusters
func (c *Collector) Collect(ctx context.Context) *models.Snapshot {
	snap := &models.Snapshot{CollectedAt: time.Now()}

	for _, cluster := range c.clusters {
		pods, err := c.collectPods(ctx, cluster)
		if err != nil {
			fmt.Printf("[WARN] Pod collection failed for cluster %s: %v\n", cluster.name, err)
		} else {
			snap.Pods = append(snap.Pods, pods...)
		}

		nodes, err := c.collectNodes(ctx, cluster, pods)
		if err != nil {
			fmt.Printf("[WARN] Node collection failed for cluster %s: %v\n", cluster.name, err)
		} else {
			snap.Nodes = append(snap.Nodes, nodes...)
		}

		stat, err := c.collectClusterStat(ctx, cluster, len(pods), len(nodes))
		if err != nil {
			fmt.Printf("[WARN] Usage collection failed for cluster %s: %v\n", cluster.name, err)
		} else {
			snap.ClusterStats = append(snap.ClusterStats, stat)
		}
	}

	return snap
}

func (c *Collector) collectPods(ctx context.Context, cluster clusterClient) ([]models.PodInfo, error) {
	podList, err := cluster.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	pods := make([]models.PodInfo, 0, len(podList.Items))
	for _, pod := range podList.Items {
		info := models.PodInfo{
			Name:      pod.Name,
			Namespace: pod.Namespace,
			Cluster:   cluster.name,
			Phase:     string(pod.Status.Phase),
		}

		for _, status := range pod.Status.ContainerStatuses {
			if status.RestartCount > info.Restarts {
				info.Restarts = status.RestartCount
			}
			if status.State.Waiting != nil && status.State.Waiting.Reason != "" {
				info.Reason = status.State.Waiting.Reason
			} else if status.LastTerminationState.Terminated != nil && info.Reason == "" {
				info.Reason = status.LastTerminationState.Terminated.Reason
			}
		}

		for _, cond := range pod.Status.Conditions {
			if cond.Type == corev1.PodReady {
				info.Ready = cond.Status == corev1.ConditionTrue
			}
		}

		pods = append(pods, info)
	}

	return pods, nil
}

func (c *Collector) collectNodes(ctx context.Context, cluster clusterClient, pods []models.PodInfo) ([]models.NodeInfo, error) {
	nodeList, err := cluster.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	gpuAllocated, err := c.gpuAllocatedByNode(ctx, cluster)
	if err != nil {
		// GPU allocation is derived from the pod list; without it the
		// nodes still report capacity and readiness.
		fmt.Printf("[WARN] GPU allocation lookup failed for cluster %s: %v\n", cluster.name, err)
		gpuAllocated = nil
	}

	nodes := make([]models.NodeInfo, 0, len(nodeList.Items))
	for _, node := range nodeList.Items {
		info := models.NodeInfo{
			Name:          node.Name,
			Cluster:       cluster.name,
			Unschedulable: node.Spec.Unschedulable,
		}

		for _, cond := range node.Status.Conditions {
			if cond.Type == corev1.NodeReady {
				info.Ready = cond.Status == corev1.ConditionTrue
				if !info.Ready {
					info.Reason = cond.Reason
				}
			}
		}

		if qty, ok := node.Status.Allocatable[gpuResourceName]; ok {
			info.GPUCount = qty.Value()
		}
		if gpuAllocated != nil {
			info.GPUAllocated = gpuAllocated[node.Name]
		}

		for _, label := range gpuNodeLabels {
			if _, ok := node.Labels[label]; ok {
				info.HasGPULabel = true
				break
			}
		}

		nodes = append(nodes, info)
	}

	return nodes, nil
}

// gpuAllocatedByNode sums GPU requests of running pods per node
func (c *Collector) gpuAllocatedByNode(ctx context.Context, cluster clusterClient) (map[string]int64, error) {
	podList, err := cluster.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "status.phase=Running",
	})
	if err != nil {
		return nil, err
	}

	allocated := make(map[string]int64)
	for _, pod := range podList.Items {
		if pod.Spec.NodeName == "" {
			continue
		}
		for _, container := range pod.Spec.Containers {
			if qty, ok := container.Resources.Requests[gpuResourceName]; ok {
				allocated[pod.Spec.NodeName] += qty.Value()
			}
		}
	}
	return allocated, nil
}

// collectClusterStat computes aggregate usage for one cluster,
// preferring the prometheus source when configured.
func (c *Collector) collectClusterStat(ctx context.Context, cluster clusterClient, podCount, nodeCount int) (models.ClusterStat, error) {
	stat := models.ClusterStat{
		Cluster:   cluster.name,
		PodCount:  podCount,
		NodeCount: nodeCount,
	}

	if c.prometheus != nil {
		cpu, mem, err := c.prometheus.ClusterUsage(ctx)
		if err != nil {
			return stat, fmt.Errorf("prometheus query failed: %w", err)
		}
		stat.CPUUsedPercent = cpu
		stat.MemUsedPercent = mem
		return stat, nil
	}

	cpu, mem, err := c.usageFromMetricsAPI(ctx, cluster)
	if err != nil {
		return stat, err
	}
	stat.CPUUsedPercent = cpu
	stat.MemUsedPercent = mem
	return stat, nil
}

// usageFromMetricsAPI derives cluster-wide usage percentages from the
// metrics API against node allocatable capacity.
func (c *Collector) usageFromMetricsAPI(ctx context.Context, cluster clusterClient) (*float64, *float64, error) {
	nodeMetrics, err := cluster.metricsClient.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get node metrics: %w", err)
	}
	if len(nodeMetrics.Items) == 0 {
		return nil, nil, fmt.Errorf("no node metrics available")
	}

	nodeList, err := cluster.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	var capacityCPU, capacityMem int64
	for _, node := range nodeList.Items {
		capacityCPU += node.Status.Allocatable.Cpu().MilliValue()
		capacityMem += node.Status.Allocatable.Memory().Value()
	}
	if capacityCPU == 0 || capacityMem == 0 {
		return nil, nil, fmt.Errorf("cluster reports no allocatable capacity")
	}

	var usedCPU, usedMem int64
	for _, item := range nodeMetrics.Items {
		usedCPU += item.Usage.Cpu().MilliValue()
		usedMem += item.Usage.Memory().Value()
	}

	cpuPercent := float64(usedCPU) / float64(capacityCPU) * 100
	memPercent := float64(usedMem) / float64(capacityMem) * 100
	return &cpuPercent, &memPercent, nil
}
