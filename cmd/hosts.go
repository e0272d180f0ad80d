// ABOUTME: Hosts subcommand for the capacity-report CLI
// ABOUTME: Prints the per-host capacity rows as a table or JSON

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
)

var hostsCluster string

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Show per-host capacity rows",
	Long:  `Display one capacity row per host: CPU topology, vCPU load, and RAM usage with the 15% reservation applied. Rows are sorted by host name.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHosts(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(hostsCmd)
	hostsCmd.Flags().StringVar(&hostsCluster, "cluster", "", "Cluster to report on")
}

// runHosts executes the per-host report and returns an exit code.
func runHosts(ctx context.Context, w io.Writer) int {
	if err := validateFormat(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if hostsCluster == "" && snapshotPath == "" {
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

	snap, err := src.Snapshot(ctx, hostsCluster)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	reports, err := capacity.ComputeHostReports(snap)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	if outputFormat == "json" {
		fmt.Fprintln(w, formatHostsJSON(reports))
	} else {
		fmt.Fprintln(w, formatHostsHuman(reports))
	}

	return exitOK
}

// formatHostsHuman renders host rows as an aligned table.
func formatHostsHuman(reports []capacity.HostReport) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "HOST\tMODEL\tSOCKETS\tCORES\tTHREADS\tVMS\tVCPUS\tVCPU/CORE\tRAM GB\tUSED GB\tUSED %\tFREE GB\tRESERVED GB\tAVAIL GB")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\n",
			r.Name, r.Model, r.Sockets, r.Cores, r.Threads,
			r.VMCount, r.VCPUCount, r.VCPUPerCore,
			r.RAMTotalGB, r.RAMUsedGB, r.UsagePercent,
			r.RAMFreeGB, r.ReservedRAMGB, r.AvailableRAMGB)
	}
	tw.Flush()

	return strings.TrimRight(sb.String(), "\n")
}

// formatHostsJSON formats host rows as indented JSON.
func formatHostsJSON(reports []capacity.HostReport) string {
	data, _ := json.MarshalIndent(reports, "", "  ")
	return string(data)
}
