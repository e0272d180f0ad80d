// ABOUTME: Inventory source backed by a JSON snapshot file
// ABOUTME: Useful for replaying captures and for pipelines without vCenter access

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
)

// FileSource serves a single snapshot parsed from a JSON file, in the shape
// the gen-snapshot script and the report API emit.
type FileSource struct {
	path string
	snap capacity.ClusterSnapshot
}

// NewFileSource reads and validates the snapshot file at path.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snap capacity.ClusterSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", path, err)
	}
	if snap.Cluster == "" {
		return nil, fmt.Errorf("snapshot file %s has no cluster name", path)
	}

	return &FileSource{path: path, snap: snap}, nil
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Close(ctx context.Context) error { return nil }

func (s *FileSource) Clusters(ctx context.Context) ([]string, error) {
	return []string{s.snap.Cluster}, nil
}

// Snapshot returns the file's snapshot. An empty cluster name selects the
// file's cluster; any other name must match it.
func (s *FileSource) Snapshot(ctx context.Context, cluster string) (capacity.ClusterSnapshot, error) {
	if cluster != "" && cluster != s.snap.Cluster {
		return capacity.ClusterSnapshot{}, &ClusterNotFoundError{Cluster: cluster}
	}
	return s.snap, nil
}
