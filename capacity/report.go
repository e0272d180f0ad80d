// ABOUTME: Output types for capacity computations
// ABOUTME: Cluster rollup, failover projections and per-host report rows

package capacity

// ClusterReport is the cluster-level rollup. RAM figures are GB. Fields
// documented as rounded carry the precision the dashboards display; the
// remaining sums are reported as collected.
type ClusterReport struct {
	Cluster         string  `json:"cluster"`
	HostCount       int     `json:"host_count"`
	VMCount         int     `json:"vm_count"`
	VMsPerHost      float64 `json:"vms_per_host"`       // 1 decimal
	TotalVCPUs      int     `json:"total_vcpus"`
	TotalAllocRAMGB float64 `json:"total_alloc_ram_gb"`
	AvgRAMPerVMGB   float64 `json:"avg_ram_per_vm_gb"` // 1 decimal
	TotalSockets    int     `json:"total_sockets"`
	TotalCores      int     `json:"total_cores"`
	VCPUPerCore     float64 `json:"vcpu_per_core"` // 1 decimal
	TotalRAMGB      float64 `json:"total_ram_gb"`
	UsedRAMGB       float64 `json:"used_ram_gb"`
	UsagePercent    float64 `json:"usage_percent"`    // whole percent
	FreeRAMGB       float64 `json:"free_ram_gb"`      // whole GB
	ReservedRAMGB   float64 `json:"reserved_ram_gb"`  // whole GB
	AvailableRAMGB  float64 `json:"available_ram_gb"` // whole GB
	EstNewVMs       int     `json:"est_new_vms"`

	Failover []FailoverProjection `json:"failover,omitempty"`
}

// FailoverProjection is the cluster's remaining headroom after losing
// HostsLost hosts. RAMAvailAfterGB may be negative; that is a legitimate
// answer meaning the cluster cannot absorb the loss.
type FailoverProjection struct {
	HostsLost        int     `json:"hosts_lost"`
	LostRAMGB        float64 `json:"lost_ram_gb"`
	LostCores        int     `json:"lost_cores"`
	RAMAfterGB       float64 `json:"ram_after_gb"`
	CoresAfter       int     `json:"cores_after"`
	VCPUPerCoreAfter float64 `json:"vcpu_per_core_after"` // whole ratio
	RAMAvailAfterGB  float64 `json:"ram_avail_after_gb"`  // whole GB
	EstNewVMs        int     `json:"est_new_vms"`
}

// HostReport is one host's row in the per-host view. Model carries the
// dominant CPU model across the whole snapshot, not the host's own reading;
// every row in a cluster shows the same value.
type HostReport struct {
	Name           string  `json:"name"`
	Model          string  `json:"model"`
	Sockets        int     `json:"sockets"`
	Cores          int     `json:"cores"`
	Threads        int     `json:"threads"`
	VMCount        int     `json:"vm_count"`
	VCPUCount      int     `json:"vcpu_count"`
	VCPUPerCore    float64 `json:"vcpu_per_core"` // unrounded
	RAMTotalGB     float64 `json:"ram_total_gb"`
	RAMUsedGB      float64 `json:"ram_used_gb"`
	RAMFreeGB      float64 `json:"ram_free_gb"`      // whole GB
	UsagePercent   float64 `json:"usage_percent"`    // whole percent
	ReservedRAMGB  float64 `json:"reserved_ram_gb"`  // whole GB
	AvailableRAMGB float64 `json:"available_ram_gb"` // whole GB
}
