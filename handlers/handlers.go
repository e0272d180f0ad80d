// ABOUTME: HTTP handler plumbing shared by all capacity report endpoints
// ABOUTME: Holds the inventory source, snapshot cache and JSON response helpers

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rnelson0/vsphere-capacity-report/cache"
	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
	"github.com/rnelson0/vsphere-capacity-report/inventory"
)

// maxRequestBodySize limits JSON request bodies to 1MB to prevent DOS attacks
const maxRequestBodySize = 1 << 20 // 1MB

// ErrorResponse is the JSON shape of every error the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type Handler struct {
	cfg    *config.Config
	cache  *cache.Cache
	source inventory.Source

	// group collapses concurrent snapshot fetches for the same cluster
	// into one inventory call.
	group singleflight.Group
}

// NewHandler wires the API handlers. source may be nil when no inventory
// backend is configured; endpoints that need one answer 503.
func NewHandler(cfg *config.Config, cache *cache.Cache, source inventory.Source) *Handler {
	return &Handler{
		cfg:    cfg,
		cache:  cache,
		source: source,
	}
}

// snapshot resolves a cluster snapshot through the cache, deduplicating
// concurrent fetches. The bool reports whether the snapshot came from cache.
func (h *Handler) snapshot(ctx context.Context, cluster string) (capacity.ClusterSnapshot, bool, error) {
	cacheKey := "snapshot:" + h.source.Name() + ":" + cluster

	if h.cache != nil {
		if cached, found := h.cache.Get(cacheKey); found {
			return cached.(capacity.ClusterSnapshot), true, nil
		}
	}

	v, err, shared := h.group.Do(cacheKey, func() (interface{}, error) {
		snap, err := h.source.Snapshot(ctx, cluster)
		if err != nil {
			return nil, err
		}
		if h.cache != nil {
			h.cache.SetWithTTL(cacheKey, snap, time.Duration(h.cfg.SnapshotTTL)*time.Second)
		}
		return snap, nil
	})
	if err != nil {
		return capacity.ClusterSnapshot{}, false, err
	}
	if shared {
		slog.Debug("Snapshot fetch deduplicated", "cluster", cluster)
	}

	return v.(capacity.ClusterSnapshot), false, nil
}

// statusForError maps domain errors onto HTTP status codes: unknown cluster
// is 404, violated report preconditions are 400, an unreachable inventory
// backend is 503, anything else is 500.
func statusForError(err error) int {
	var notFound *inventory.ClusterNotFoundError
	var insufficient *capacity.InsufficientHostsError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &insufficient),
		errors.Is(err, capacity.ErrEmptyHostSet),
		errors.Is(err, capacity.ErrEmptyVMSet),
		errors.Is(err, capacity.ErrZeroCores),
		errors.Is(err, capacity.ErrZeroMemory),
		errors.Is(err, capacity.ErrInvalidFailoverCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
