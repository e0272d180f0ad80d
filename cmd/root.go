// ABOUTME: Root command for the capacity-report CLI
// ABOUTME: Global source/format flags; the root command prints the cluster report

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
	"github.com/rnelson0/vsphere-capacity-report/inventory"
)

var (
	rvtoolsPath  string
	snapshotPath string
	outputFormat string

	clusterName  string
	failoverList string
)

// Exit codes shared by all subcommands.
const (
	exitOK                = 0
	exitError             = 1
	exitClusterNotFound   = 2
	exitInsufficientHosts = 3
)

// rootCmd is the base command; running it without a subcommand prints the
// cluster capacity report.
var rootCmd = &cobra.Command{
	Use:   "capacity-report",
	Short: "vSphere cluster capacity reports with failover headroom",
	Long: `capacity-report computes cluster and per-host capacity reports from
vSphere inventory, including headroom projections after losing N hosts.

Inventory comes from a live vCenter (VSPHERE_* environment variables or a
.env file), an RVTools export (--rvtools), or a JSON snapshot (--snapshot).

Exit codes:
  0 - Success
  1 - Error (connectivity, invalid input, thresholds exceeded for check)
  2 - Cluster not found
  3 - Fewer hosts than the requested failover simulation needs`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runReport(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rvtoolsPath, "rvtools", "", "Read inventory from an RVTools .xlsx export instead of vCenter")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "Read inventory from a JSON snapshot file instead of vCenter")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table or json")

	rootCmd.Flags().StringVar(&clusterName, "cluster", "", "Cluster to report on")
	rootCmd.Flags().StringVar(&failoverList, "failover", "", "Comma-separated host-loss counts to project (default from FAILOVER_COUNTS, normally 1,2)")
}

// validateFormat rejects unknown --format values.
func validateFormat() error {
	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("--format must be table or json, got %q", outputFormat)
	}
	return nil
}

// openSource builds the inventory source selected by the global flags,
// falling back to live vCenter from environment configuration.
func openSource(ctx context.Context, cfg *config.Config) (inventory.Source, error) {
	if rvtoolsPath != "" && snapshotPath != "" {
		return nil, fmt.Errorf("--rvtools and --snapshot are mutually exclusive")
	}

	switch {
	case snapshotPath != "":
		return inventory.NewFileSource(snapshotPath)
	case rvtoolsPath != "":
		return inventory.NewRVToolsSource(ctx, rvtoolsPath)
	default:
		if !cfg.VSphereConfigured() {
			return nil, fmt.Errorf("no inventory source: set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD and VSPHERE_DATACENTER, or pass --rvtools/--snapshot")
		}
		return inventory.NewVSphereSource(inventory.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			Insecure:   cfg.VSphereInsecure,
			AllProxy:   cfg.VSphereAllProxy,
			HostFanout: cfg.VSphereHostFanout,
		}), nil
	}
}

// codeForError maps domain errors onto the CLI exit codes.
func codeForError(err error) int {
	var notFound *inventory.ClusterNotFoundError
	var insufficient *capacity.InsufficientHostsError

	switch {
	case errors.As(err, &notFound):
		return exitClusterNotFound
	case errors.As(err, &insufficient):
		return exitInsufficientHosts
	default:
		return exitError
	}
}
