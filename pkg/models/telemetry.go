package models

import "time"

// PodInfo is the raw pod telemetry consumed by the normalizer
type PodInfo struct {
	Name      string
	Namespace string
	Cluster   string
	Phase     string
	Restarts  int32
	Reason    string
	Ready     bool
}

// NodeInfo is the raw node telemetry consumed by the normalizer
type NodeInfo struct {
	Name          string
	Cluster       string
	Ready         bool
	Unschedulable bool
	Reason        string

	// GPU capacity and allocation, from node status and pod requests.
	// HasGPULabel is true when the node carries a GPU-type label even
	// if no GPU capacity is reported.
	GPUCount     int64
	GPUAllocated int64
	HasGPULabel  bool
}

// ClusterStat is aggregate resource usage for one cluster.
// Percent fields are nil when the backing metric source was
// unavailable for the cycle (absence is not 0% usage).
type ClusterStat struct {
	Cluster        string
	CPUUsedPercent *float64
	MemUsedPercent *float64
	NodeCount      int
	PodCount       int
}

// Snapshot is one cycle's view of all monitored clusters. Sections
// whose collector failed are simply absent for the cycle.
type Snapshot struct {
	Pods         []PodInfo
	Nodes        []NodeInfo
	ClusterStats []ClusterStat
	CollectedAt  time.Time
}

// Empty reports whether the snapshot carries no telemetry at all
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Pods) == 0 && len(s.Nodes) == 0 && len(s.ClusterStats) == 0)
}
