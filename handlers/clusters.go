// ABOUTME: HTTP handler for cluster discovery
// ABOUTME: Lists the cluster names the inventory source knows about

package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// GetClusters lists report targets from the inventory source.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) GetClusters(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.writeError(w, "No inventory source configured. Set VSPHERE_* environment variables or start with --rvtools/--snapshot.", http.StatusServiceUnavailable)
		return
	}

	cacheKey := "clusters:" + h.source.Name()
	if h.cache != nil {
		if cached, found := h.cache.Get(cacheKey); found {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{"clusters": cached})
			return
		}
	}

	clusters, err := h.source.Clusters(r.Context())
	if err != nil {
		slog.Error("Cluster listing failed", "source", h.source.Name(), "error", err)
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	if clusters == nil {
		clusters = []string{}
	}

	if h.cache != nil {
		h.cache.SetWithTTL(cacheKey, clusters, time.Duration(h.cfg.SnapshotTTL)*time.Second)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"clusters": clusters})
}
