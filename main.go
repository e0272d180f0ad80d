// ABOUTME: Entry point for the capacity-report tool
// ABOUTME: Initializes logging and dispatches to the cobra command tree

package main

import (
	"fmt"
	"os"

	"github.com/rnelson0/vsphere-capacity-report/cmd"
	"github.com/rnelson0/vsphere-capacity-report/logger"
)

func main() {
	// Logs go to stderr; stdout belongs to report output.
	logger.Init()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
