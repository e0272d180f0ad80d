// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports service status and which inventory source is wired

package handlers

import "net/http"

// Health returns API health status including the configured inventory source.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"source": "not_configured",
	}

	if h.source != nil {
		resp["source"] = h.source.Name()
	}

	h.writeJSON(w, http.StatusOK, resp)
}
