// ABOUTME: Inventory source contract and shared error types
// ABOUTME: A source resolves cluster names to capacity snapshots

package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
)

// Source resolves cluster inventory into snapshots the report engine can
// consume. Implementations: live vCenter, RVTools workbooks, JSON files.
type Source interface {
	// Name identifies the source kind, e.g. "vsphere" or "rvtools".
	Name() string

	// Clusters lists the cluster names the source knows about.
	Clusters(ctx context.Context) ([]string, error)

	// Snapshot captures hosts and VMs for one cluster. Host order is
	// whatever the backing inventory yields; callers must not assume
	// it is sorted.
	Snapshot(ctx context.Context, cluster string) (capacity.ClusterSnapshot, error)

	// Close releases any connections or handles the source holds.
	Close(ctx context.Context) error
}

// ErrUnavailable marks failures reaching the backing inventory, as opposed
// to a well-formed answer like "no such cluster".
var ErrUnavailable = errors.New("inventory source unavailable")

// ClusterNotFoundError reports a cluster name the source does not know.
type ClusterNotFoundError struct {
	Cluster string
}

func (e *ClusterNotFoundError) Error() string {
	return fmt.Sprintf("cluster %q not found", e.Cluster)
}
