// ABOUTME: Check subcommand for the capacity-report CLI
// ABOUTME: Threshold gate on usage and post-failover headroom for CI and cron

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
)

var (
	checkCluster    string
	maxUsagePercent int
	minHeadroomVMs  int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check capacity thresholds",
	Long: `Check capacity thresholds and exit non-zero if any are exceeded.

Two gates are evaluated: cluster RAM usage must stay at or below
--max-usage, and the estimated new-VM headroom after the worst configured
failover projection must stay at or above --min-headroom.

Exit codes:
  0 - All checks passed
  1 - One or more thresholds exceeded
  2 - Cluster not found
  3 - Fewer hosts than the failover simulation needs`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCheck(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkCluster, "cluster", "", "Cluster to check")
	checkCmd.Flags().IntVar(&maxUsagePercent, "max-usage", 85, "Maximum allowed RAM usage percentage")
	checkCmd.Flags().IntVar(&minHeadroomVMs, "min-headroom", 1, "Minimum estimated new VMs after the worst failover projection")
}

// checkResult represents the result of a single threshold check
type checkResult struct {
	name      string
	value     float64
	threshold float64
	unit      string
	passed    bool
}

// runCheck executes the threshold checks and returns an exit code.
func runCheck(ctx context.Context, w io.Writer) int {
	if err := validateCheckFlags(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if checkCluster == "" && snapshotPath == "" {
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

	snap, err := src.Snapshot(ctx, checkCluster)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	report, err := capacity.ComputeClusterReport(snap, cfg.FailoverCounts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	results := performChecks(report)

	if outputFormat == "json" {
		fmt.Fprintln(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	_, failed := countResults(results)
	if failed > 0 {
		return exitError
	}
	return exitOK
}

// validateCheckFlags ensures threshold values are valid.
func validateCheckFlags() error {
	if err := validateFormat(); err != nil {
		return err
	}
	if maxUsagePercent < 0 || maxUsagePercent > 100 {
		return fmt.Errorf("--max-usage must be between 0 and 100")
	}
	if minHeadroomVMs < 0 {
		return fmt.Errorf("--min-headroom must not be negative")
	}
	return nil
}

// performChecks runs the threshold checks against the cluster report. The
// headroom gate uses the smallest post-failover estimate, the worst case
// among the configured projections.
func performChecks(report capacity.ClusterReport) []checkResult {
	results := []checkResult{
		{
			name:      "RAM usage",
			value:     report.UsagePercent,
			threshold: float64(maxUsagePercent),
			unit:      "%",
			passed:    report.UsagePercent <= float64(maxUsagePercent),
		},
	}

	worst := report.EstNewVMs
	for _, p := range report.Failover {
		if p.EstNewVMs < worst {
			worst = p.EstNewVMs
		}
	}
	results = append(results, checkResult{
		name:      "Failover headroom",
		value:     float64(worst),
		threshold: float64(minHeadroomVMs),
		unit:      " VMs",
		passed:    worst >= minHeadroomVMs,
	})

	return results
}

// countResults returns the count of passed and failed checks
func countResults(results []checkResult) (passed, failed int) {
	for _, r := range results {
		if r.passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

// formatCheckHuman formats check results for human readability
func formatCheckHuman(results []checkResult) string {
	var output string

	for _, r := range results {
		symbol := "✓"
		if !r.passed {
			symbol = "✗"
		}
		output += fmt.Sprintf("%s %s: %.0f%s (threshold: %.0f%s)\n",
			symbol, r.name, r.value, r.unit, r.threshold, r.unit)
	}

	passed, failed := countResults(results)
	if failed > 0 {
		output += fmt.Sprintf("\nFAILED: %d check(s) exceeded threshold", failed)
	} else {
		output += fmt.Sprintf("\nPASSED: All %d check(s) within thresholds", passed)
	}

	return output
}

// formatCheckJSON formats check results as JSON
func formatCheckJSON(results []checkResult) string {
	_, failed := countResults(results)

	checks := make([]map[string]interface{}, len(results))
	for i, r := range results {
		checks[i] = map[string]interface{}{
			"name":      r.name,
			"value":     r.value,
			"threshold": r.threshold,
			"passed":    r.passed,
		}
	}

	status := "passed"
	if failed > 0 {
		status = "failed"
	}

	data, _ := json.MarshalIndent(map[string]interface{}{
		"status": status,
		"checks": checks,
	}, "", "  ")
	return string(data)
}
