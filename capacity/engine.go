// ABOUTME: Pure report computations over a cluster snapshot
// ABOUTME: Deterministic arithmetic only; no I/O, no clocks, no shared state

package capacity

import (
	"fmt"
	"math"
	"sort"
)

// reservedFraction is the slice of total RAM held back from placement to
// absorb usage spikes. Fixed at 15%, not configurable.
const reservedFraction = 0.15

// ComputeClusterReport derives the cluster-level rollup from a snapshot,
// including one failover projection per entry in failoverCounts. The same
// snapshot always yields the same report.
func ComputeClusterReport(snap ClusterSnapshot, failoverCounts []int) (ClusterReport, error) {
	if len(snap.Hosts) == 0 {
		return ClusterReport{}, ErrEmptyHostSet
	}
	if len(snap.VMs) == 0 {
		return ClusterReport{}, ErrEmptyVMSet
	}

	totalVCPUs := 0
	totalAllocRAM := 0.0
	for _, vm := range snap.VMs {
		totalVCPUs += vm.VCPUs
		totalAllocRAM += vm.MemoryGB
	}

	totalSockets := 0
	totalCores := 0
	totalRAM := 0.0
	usedRAM := 0.0
	for _, h := range snap.Hosts {
		totalSockets += h.Sockets
		totalCores += h.Cores
		totalRAM += h.MemoryTotalGB
		usedRAM += h.MemoryUsedGB
	}
	if totalCores == 0 {
		return ClusterReport{}, ErrZeroCores
	}
	if totalRAM == 0 {
		return ClusterReport{}, ErrZeroMemory
	}

	hostCount := len(snap.Hosts)
	vmCount := len(snap.VMs)

	avgRAMPerVM := round1(totalAllocRAM / float64(vmCount))
	if avgRAMPerVM == 0 {
		// VM estimates divide by the average; zero allocation makes
		// every estimate meaningless.
		return ClusterReport{}, fmt.Errorf("average RAM per VM: %w", ErrZeroMemory)
	}

	freeRAM := math.Round(totalRAM - usedRAM)
	reservedRAM := math.Round(totalRAM * reservedFraction)
	availableRAM := math.Round(freeRAM - reservedRAM)

	report := ClusterReport{
		Cluster:         snap.Cluster,
		HostCount:       hostCount,
		VMCount:         vmCount,
		VMsPerHost:      round1(float64(vmCount) / float64(hostCount)),
		TotalVCPUs:      totalVCPUs,
		TotalAllocRAMGB: totalAllocRAM,
		AvgRAMPerVMGB:   avgRAMPerVM,
		TotalSockets:    totalSockets,
		TotalCores:      totalCores,
		VCPUPerCore:     round1(float64(totalVCPUs) / float64(totalCores)),
		TotalRAMGB:      totalRAM,
		UsedRAMGB:       usedRAM,
		UsagePercent:    math.Round(usedRAM / totalRAM * 100),
		FreeRAMGB:       freeRAM,
		ReservedRAMGB:   reservedRAM,
		AvailableRAMGB:  availableRAM,
		EstNewVMs:       estimateVMs(availableRAM, avgRAMPerVM),
	}

	for _, k := range failoverCounts {
		proj, err := projectFailover(snap.Hosts, k, report)
		if err != nil {
			return ClusterReport{}, err
		}
		report.Failover = append(report.Failover, proj)
	}

	return report, nil
}

// ComputeHostReports derives one row per host, sorted by host name. The VM
// set may be empty; nothing here divides by VM count.
func ComputeHostReports(snap ClusterSnapshot) ([]HostReport, error) {
	if len(snap.Hosts) == 0 {
		return nil, ErrEmptyHostSet
	}

	model := dominantCPUModel(snap.Hosts)

	reports := make([]HostReport, 0, len(snap.Hosts))
	for _, h := range snap.Hosts {
		if h.Cores == 0 {
			return nil, fmt.Errorf("host %s: %w", h.Name, ErrZeroCores)
		}
		if h.MemoryTotalGB == 0 {
			return nil, fmt.Errorf("host %s: %w", h.Name, ErrZeroMemory)
		}

		free := math.Round(h.MemoryTotalGB - h.MemoryUsedGB)
		reserved := math.Round(h.MemoryTotalGB * reservedFraction)

		reports = append(reports, HostReport{
			Name:           h.Name,
			Model:          model,
			Sockets:        h.Sockets,
			Cores:          h.Cores,
			Threads:        h.Threads,
			VMCount:        h.VMCount,
			VCPUCount:      h.VCPUCount,
			VCPUPerCore:    float64(h.VCPUCount) / float64(h.Cores),
			RAMTotalGB:     h.MemoryTotalGB,
			RAMUsedGB:      h.MemoryUsedGB,
			RAMFreeGB:      free,
			UsagePercent:   math.Round(h.MemoryUsedGB / h.MemoryTotalGB * 100),
			ReservedRAMGB:  reserved,
			AvailableRAMGB: math.Round(free - reserved),
		})
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })

	return reports, nil
}

// projectFailover simulates losing the first k hosts in snapshot order.
// The selection is inventory-order dependent, not a worst-case pick of the
// largest hosts; callers that want worst-case ordering must sort the
// snapshot before computing.
func projectFailover(hosts []HostSample, k int, base ClusterReport) (FailoverProjection, error) {
	if k < 1 {
		return FailoverProjection{}, fmt.Errorf("%w: got %d", ErrInvalidFailoverCount, k)
	}
	if k >= len(hosts) {
		return FailoverProjection{}, &InsufficientHostsError{Requested: k, Available: len(hosts)}
	}

	lostRAM := 0.0
	lostCores := 0
	for _, h := range hosts[:k] {
		lostRAM += h.MemoryTotalGB
		lostCores += h.Cores
	}

	coresAfter := base.TotalCores - lostCores
	if coresAfter <= 0 {
		return FailoverProjection{}, ErrZeroCores
	}

	ramAvailAfter := math.Round(base.AvailableRAMGB - lostRAM)

	return FailoverProjection{
		HostsLost:        k,
		LostRAMGB:        lostRAM,
		LostCores:        lostCores,
		RAMAfterGB:       base.TotalRAMGB - lostRAM,
		CoresAfter:       coresAfter,
		VCPUPerCoreAfter: math.Round(float64(base.TotalVCPUs) / float64(coresAfter)),
		RAMAvailAfterGB:  ramAvailAfter,
		EstNewVMs:        estimateVMs(ramAvailAfter, base.AvgRAMPerVMGB),
	}, nil
}

// dominantCPUModel returns the most frequent CPU model string across hosts.
// Ties go to the model encountered first in snapshot order.
func dominantCPUModel(hosts []HostSample) string {
	counts := make(map[string]int, len(hosts))
	for _, h := range hosts {
		counts[h.CPUModel]++
	}

	best := ""
	bestCount := 0
	for _, h := range hosts {
		if c := counts[h.CPUModel]; c > bestCount {
			best = h.CPUModel
			bestCount = c
		}
	}
	return best
}

// estimateVMs is how many more VMs of average size fit in availableRAM.
// Negative availability yields a negative estimate.
func estimateVMs(availableRAM, avgPerVM float64) int {
	return int(math.Round(availableRAM / avgPerVM))
}

// round1 rounds to one decimal place, halves away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
