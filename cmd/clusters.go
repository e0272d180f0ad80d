// ABOUTME: Clusters subcommand for the capacity-report CLI
// ABOUTME: Lists the cluster names the selected inventory source knows about

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

	"github.com/spf13/cobra"

	"github.com/rnelson0/vsphere-capacity-report/config"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List report targets",
	Long:  `List the cluster names available from the selected inventory source.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runClusters(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(clustersCmd)
}

// runClusters lists cluster names and returns an exit code.
func runClusters(ctx context.Context, w io.Writer) int {
	if err := validateFormat(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
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

	clusters, err := src.Clusters(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return codeForError(err)
	}

	if outputFormat == "json" {
		data, _ := json.MarshalIndent(map[string][]string{"clusters": clusters}, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	if len(clusters) == 0 {
		fmt.Fprintln(w, "No clusters found.")
		return exitOK
	}
	fmt.Fprintln(w, strings.Join(clusters, "\n"))

	return exitOK
}
