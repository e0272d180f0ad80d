// ABOUTME: Input types for capacity computations
// ABOUTME: Defines host/VM samples and the cluster snapshot that carries them

package capacity

// HostSample is one physical host's capacity and usage at collection time.
// Samples are immutable once captured; the inventory source produces them.
type HostSample struct {
	Name          string  `json:"name"`
	Sockets       int     `json:"sockets"`
	Cores         int     `json:"cores"`
	Threads       int     `json:"threads"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	CPUModel      string  `json:"cpu_model"`
	VMCount       int     `json:"vm_count"`
	VCPUCount     int     `json:"vcpu_count"`
}

// VMSample is one virtual machine's resource allocation.
type VMSample struct {
	Name     string  `json:"name"`
	VCPUs    int     `json:"vcpus"`
	MemoryGB float64 `json:"memory_gb"`
	Host     string  `json:"host"`
}

// ClusterSnapshot is the sole input to the report computations. Host order
// is preserved from the inventory source; failover projections depend on it.
// A VM referencing a host missing from Hosts is tolerated, not rejected.
type ClusterSnapshot struct {
	Cluster string       `json:"cluster"`
	Hosts   []HostSample `json:"hosts"`
	VMs     []VMSample   `json:"vms"`
}
