// ABOUTME: Offline inventory source reading RVTools export workbooks
// ABOUTME: Ingests vHost and vInfo sheets through DuckDB's excel reader

package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
)

const (
	loadExcelStmt = "install excel;load excel;"

	createSheetStmt = `CREATE TABLE %s AS SELECT * FROM read_xlsx("%s",sheet="%s",all_varchar=true);`

	selectClustersStmt = `
   SELECT DISTINCT "Cluster" as "name"
   FROM vhost
   WHERE "Cluster" IS NOT NULL
   ORDER BY "Cluster";
`

	// Sheet order is preserved via rowid so failover projections see hosts
	// the way the export listed them.
	selectHostsStmt = `
   SELECT
       COALESCE("Host", '') as "name",
       COALESCE(TRY_CAST("# CPU" AS INTEGER), 0) as "sockets",
       COALESCE(TRY_CAST("# Cores" AS INTEGER), 0) as "cores",
       COALESCE(TRY_CAST("# Memory" AS DOUBLE), 0) as "memory_mib",
       COALESCE(TRY_CAST("Memory usage %" AS DOUBLE), 0) as "memory_usage_percent",
       COALESCE("CPU Model", '') as "cpu_model",
       (COALESCE("HT Active", 'False') = 'True') as "ht_active",
       COALESCE(TRY_CAST("# VMs" AS INTEGER), 0) as "vm_count",
       COALESCE(TRY_CAST("# vCPUs" AS INTEGER), 0) as "vcpu_count"
   FROM vhost
   WHERE "Cluster" = ?
   ORDER BY rowid;
`

	selectVMsStmt = `
   SELECT
       COALESCE("VM", '') as "name",
       COALESCE(TRY_CAST("CPUs" AS INTEGER), 0) as "vcpus",
       COALESCE(TRY_CAST("Memory" AS DOUBLE), 0) as "memory_mib",
       COALESCE("Host", '') as "host"
   FROM vinfo
   WHERE "Cluster" = ?
     AND COALESCE("Template", 'False') != 'True'
   ORDER BY rowid;
`
)

type rvHostRow struct {
	Name               string  `db:"name"`
	Sockets            int     `db:"sockets"`
	Cores              int     `db:"cores"`
	MemoryMiB          float64 `db:"memory_mib"`
	MemoryUsagePercent float64 `db:"memory_usage_percent"`
	CPUModel           string  `db:"cpu_model"`
	HTActive           bool    `db:"ht_active"`
	VMCount            int     `db:"vm_count"`
	VCPUCount          int     `db:"vcpu_count"`
}

type rvVMRow struct {
	Name      string  `db:"name"`
	VCPUs     int     `db:"vcpus"`
	MemoryMiB float64 `db:"memory_mib"`
	Host      string  `db:"host"`
}

// RVToolsSource serves snapshots from an RVTools .xlsx export. The workbook
// is ingested once into an in-memory DuckDB; queries afterwards never touch
// the file again.
type RVToolsSource struct {
	path      string
	connector *duckdb.Connector
	db        *sql.DB
	hasVInfo  bool
}

// NewRVToolsSource ingests the workbook at path. The vHost sheet is
// required; a missing vInfo sheet only degrades VM figures to empty.
func NewRVToolsSource(ctx context.Context, path string) (*RVToolsSource, error) {
	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, fmt.Errorf("initializing duckdb: %w", err)
	}
	db := sql.OpenDB(connector)

	if _, err := db.ExecContext(ctx, loadExcelStmt); err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("%w: loading duckdb excel extension: %v", ErrUnavailable, err)
	}

	src := &RVToolsSource{path: path, connector: connector, db: db}

	if err := src.ingestSheet(ctx, "vHost"); err != nil {
		src.Close(ctx)
		return nil, fmt.Errorf("reading vHost sheet from %s: %w", path, err)
	}
	if err := src.ingestSheet(ctx, "vInfo"); err != nil {
		slog.Warn("workbook has no readable vInfo sheet; VM figures will be empty", "file", path, "error", err)
	} else {
		src.hasVInfo = true
	}

	return src, nil
}

func (s *RVToolsSource) ingestSheet(ctx context.Context, sheet string) error {
	stmt := fmt.Sprintf(createSheetStmt, strings.ToLower(sheet), s.path, sheet)
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *RVToolsSource) Name() string { return "rvtools" }

// Close releases the in-memory database.
func (s *RVToolsSource) Close(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return err
	}
	return s.connector.Close()
}

// Clusters lists the distinct cluster names present in the vHost sheet.
func (s *RVToolsSource) Clusters(ctx context.Context) ([]string, error) {
	var names []string
	if err := sqlscan.Select(ctx, s.db, &names, selectClustersStmt); err != nil {
		return nil, fmt.Errorf("scanning clusters: %w", err)
	}
	return names, nil
}

// Snapshot builds a snapshot for one cluster from the ingested sheets.
func (s *RVToolsSource) Snapshot(ctx context.Context, cluster string) (capacity.ClusterSnapshot, error) {
	if cluster == "" {
		return capacity.ClusterSnapshot{}, fmt.Errorf("cluster name required for RVTools lookups")
	}

	var hostRows []rvHostRow
	if err := sqlscan.Select(ctx, s.db, &hostRows, selectHostsStmt, cluster); err != nil {
		return capacity.ClusterSnapshot{}, fmt.Errorf("scanning vHost rows: %w", err)
	}
	if len(hostRows) == 0 {
		return capacity.ClusterSnapshot{}, &ClusterNotFoundError{Cluster: cluster}
	}

	snap := capacity.ClusterSnapshot{Cluster: cluster}
	for _, row := range hostRows {
		snap.Hosts = append(snap.Hosts, hostSampleFromRVRow(row))
	}

	if s.hasVInfo {
		var vmRows []rvVMRow
		if err := sqlscan.Select(ctx, s.db, &vmRows, selectVMsStmt, cluster); err != nil {
			return capacity.ClusterSnapshot{}, fmt.Errorf("scanning vInfo rows: %w", err)
		}
		for _, row := range vmRows {
			snap.VMs = append(snap.VMs, vmSampleFromRVRow(row))
		}
	}

	slog.Debug("RVTools snapshot built", "cluster", cluster, "hosts", len(snap.Hosts), "vms", len(snap.VMs))
	return snap, nil
}

// hostSampleFromRVRow converts a vHost row. RVTools reports memory in MiB
// and usage as a percentage; it has no thread column, so threads are
// derived from core count and the hyperthreading flag.
func hostSampleFromRVRow(r rvHostRow) capacity.HostSample {
	threads := r.Cores
	if r.HTActive {
		threads = r.Cores * 2
	}
	totalGB := r.MemoryMiB / 1024
	return capacity.HostSample{
		Name:          r.Name,
		Sockets:       r.Sockets,
		Cores:         r.Cores,
		Threads:       threads,
		MemoryTotalGB: totalGB,
		MemoryUsedGB:  totalGB * r.MemoryUsagePercent / 100,
		CPUModel:      r.CPUModel,
		VMCount:       r.VMCount,
		VCPUCount:     r.VCPUCount,
	}
}

func vmSampleFromRVRow(r rvVMRow) capacity.VMSample {
	return capacity.VMSample{
		Name:     r.Name,
		VCPUs:    r.VCPUs,
		MemoryGB: r.MemoryMiB / 1024,
		Host:     r.Host,
	}
}
