// ABOUTME: HTTP handlers for cluster and host capacity reports
// ABOUTME: Resolves snapshots through the inventory source, or accepts a posted one

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
)

// GetClusterReport computes the cluster-level capacity report.
// Query params: cluster (required), failover (optional comma list, e.g. "1,2").
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) GetClusterReport(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.writeError(w, "No inventory source configured. Set VSPHERE_* environment variables or start with --rvtools/--snapshot.", http.StatusServiceUnavailable)
		return
	}

	cluster := r.URL.Query().Get("cluster")
	if cluster == "" {
		h.writeError(w, "Missing required query parameter: cluster", http.StatusBadRequest)
		return
	}

	failoverCounts := h.cfg.FailoverCounts
	if raw := r.URL.Query().Get("failover"); raw != "" {
		counts, err := config.ParseFailoverCounts(raw)
		if err != nil {
			h.writeError(w, "Invalid failover parameter: "+err.Error(), http.StatusBadRequest)
			return
		}
		failoverCounts = counts
	}

	snap, cached, err := h.snapshot(r.Context(), cluster)
	if err != nil {
		slog.Error("Snapshot fetch failed", "cluster", cluster, "error", err)
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	if cached {
		slog.Debug("Report served from cached snapshot", "cluster", cluster)
	}

	report, err := capacity.ComputeClusterReport(snap, failoverCounts)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// GetHostReports computes the per-host capacity rows for a cluster.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) GetHostReports(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.writeError(w, "No inventory source configured. Set VSPHERE_* environment variables or start with --rvtools/--snapshot.", http.StatusServiceUnavailable)
		return
	}

	cluster := r.URL.Query().Get("cluster")
	if cluster == "" {
		h.writeError(w, "Missing required query parameter: cluster", http.StatusBadRequest)
		return
	}

	snap, _, err := h.snapshot(r.Context(), cluster)
	if err != nil {
		slog.Error("Snapshot fetch failed", "cluster", cluster, "error", err)
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	reports, err := capacity.ComputeHostReports(snap)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cluster": snap.Cluster,
		"hosts":   reports,
	})
}

// ManualReportRequest is the POST /api/v1/report body: a complete snapshot
// plus optional failover counts.
type ManualReportRequest struct {
	Snapshot capacity.ClusterSnapshot `json:"snapshot"`
	Failover []int                    `json:"failover,omitempty"`
}

// PostManualReport computes a report from a posted snapshot without touching
// any inventory source. Useful for replaying captures and for what-if input.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) PostManualReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ManualReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return
		}
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	failoverCounts := req.Failover
	if len(failoverCounts) == 0 {
		failoverCounts = h.cfg.FailoverCounts
	}

	report, err := capacity.ComputeClusterReport(req.Snapshot, failoverCounts)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}
