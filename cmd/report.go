// ABOUTME: Cluster report output for the capacity-report CLI
// ABOUTME: Runs the report engine against the selected source and formats the result

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
)

// runReport executes the cluster report and returns an exit code.
func runReport(ctx context.Context, w io.Writer) int {
	if err := validateFormat(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if clusterName == "" && snapshotPath == "" {
		fmt.Fprintln(w, "Error: --cluster is required (except with --snapshot, whose file names its cluster)")
		return exitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer src.Close(ctx)

	failoverCounts := cfg.FailoverCounts
	if failoverList != "" {
		failoverCounts, err = config.ParseFailoverCounts(failoverList)
		if err != nil {
			fmt.Fprintf(w, "Error: --failover: %v\n", err)
			return exitError
		}
	}

	snap, err := src.Snapshot(ctx, clusterName)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	report, err := capacity.ComputeClusterReport(snap, failoverCounts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	if outputFormat == "json" {
		fmt.Fprintln(w, formatReportJSON(report))
	} else {
		fmt.Fprintln(w, formatReportHuman(report))
	}

	return exitOK
}

// formatReportHuman formats the cluster report for human readability.
func formatReportHuman(r capacity.ClusterReport) string {
	out := fmt.Sprintf(`Cluster:         %s
Hosts:           %d
VMs:             %d (%.1f per host)
Sockets/Cores:   %d / %d
vCPUs:           %d (%.1f per core)

RAM total:       %.0f GB
RAM used:        %.0f GB (%.0f%%)
RAM free:        %.0f GB
RAM reserved:    %.0f GB (15%% safety margin)
RAM available:   %.0f GB

VM allocation:   %.0f GB (%.1f GB average)
Est. new VMs:    %d`,
		r.Cluster,
		r.HostCount,
		r.VMCount, r.VMsPerHost,
		r.TotalSockets, r.TotalCores,
		r.TotalVCPUs, r.VCPUPerCore,
		r.TotalRAMGB,
		r.UsedRAMGB, r.UsagePercent,
		r.FreeRAMGB,
		r.ReservedRAMGB,
		r.AvailableRAMGB,
		r.TotalAllocRAMGB, r.AvgRAMPerVMGB,
		r.EstNewVMs)

	for _, p := range r.Failover {
		out += fmt.Sprintf(`

After losing %d host(s):
  RAM remaining:   %.0f GB (-%.0f GB)
  Cores remaining: %d (-%d)
  vCPU per core:   %.0f
  RAM available:   %.0f GB
  Est. new VMs:    %d`,
			p.HostsLost,
			p.RAMAfterGB, p.LostRAMGB,
			p.CoresAfter, p.LostCores,
			p.VCPUPerCoreAfter,
			p.RAMAvailAfterGB,
			p.EstNewVMs)
	}

	return out
}

// formatReportJSON formats the cluster report as indented JSON.
func formatReportJSON(r capacity.ClusterReport) string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}
