// ABOUTME: Test helpers for e2e tests
// ABOUTME: Builds the real route table and middleware chain over a snapshot file

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rnelson0/vsphere-capacity-report/cache"
	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/rnelson0/vsphere-capacity-report/config"
	"github.com/rnelson0/vsphere-capacity-report/handlers"
	"github.com/rnelson0/vsphere-capacity-report/inventory"
	"github.com/rnelson0/vsphere-capacity-report/middleware"
)

// fixtureSnapshot is a three-host cluster: 300GB RAM at 50% usage, 10 VMs
// allocating 40 vCPUs and 60GB.
func fixtureSnapshot() capacity.ClusterSnapshot {
	snap := capacity.ClusterSnapshot{
		Cluster: "lab",
		Hosts: []capacity.HostSample{
			{Name: "esx-a", Sockets: 2, Cores: 10, Threads: 20, MemoryTotalGB: 100, MemoryUsedGB: 50, CPUModel: "Intel Xeon Gold 6230"},
			{Name: "esx-b", Sockets: 2, Cores: 10, Threads: 20, MemoryTotalGB: 100, MemoryUsedGB: 50, CPUModel: "Intel Xeon Gold 6230"},
			{Name: "esx-c", Sockets: 2, Cores: 10, Threads: 20, MemoryTotalGB: 100, MemoryUsedGB: 50, CPUModel: "Intel Xeon Gold 6230"},
		},
	}
	for i := 0; i < 10; i++ {
		snap.VMs = append(snap.VMs, capacity.VMSample{Name: "vm", VCPUs: 4, MemoryGB: 6, Host: "esx-a"})
	}
	return snap
}

// newTestServer assembles the API exactly as serve does: file-backed
// inventory source, snapshot cache, route table, middleware chain. extraEnv
// is applied before config.Load.
func newTestServer(t *testing.T, extraEnv map[string]string) *httptest.Server {
	t.Helper()

	for key, value := range extraEnv {
		t.Setenv(key, value)
	}

	data, err := json.Marshal(fixtureSnapshot())
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	src, err := inventory.NewFileSource(path)
	if err != nil {
		t.Fatalf("Failed to open file source: %v", err)
	}

	snapshotCache := cache.New(time.Duration(cfg.SnapshotTTL) * time.Second)
	t.Cleanup(snapshotCache.Stop)

	h := handlers.NewHandler(cfg, snapshotCache, src)

	corsEnabled := len(cfg.CORSAllowedOrigins) > 0

	chain := []middleware.Middleware{middleware.LogRequest}
	if corsEnabled {
		chain = append(chain, middleware.CORSWithConfig(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
		chain = append(chain, middleware.RateLimit(limiter, middleware.ClientIP))
	}

	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}

	mux := http.NewServeMux()
	registered := make(map[string]bool)
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, chain...))
		if corsEnabled && !registered[route.Path] {
			registered[route.Path] = true
			mux.HandleFunc("OPTIONS "+route.Path, middleware.Chain(preflight, chain...))
		}
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
