// ABOUTME: Configuration loader for the capacity report tool
// ABOUTME: Loads settings from environment variables with defaults, seeded from .env

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	SnapshotTTL        int      // seconds, cache lifetime for collected snapshots
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitDefault int  // Requests per minute per client (default: 100)

	// Reports
	FailoverCounts []int // host-loss counts projected by default (default: 1,2)

	// vSphere (optional; offline sources work without it)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
	VSphereAllProxy   string // ssh+socks5://user@host:port?private-key=/path
	VSphereHostFanout int    // concurrent host reads per snapshot (default: 8)
}

// VSphereConfigured returns true if vCenter credentials are set.
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

func Load() (*Config, error) {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		SnapshotTTL:        getEnvInt("SNAPSHOT_CACHE_TTL", 300),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
		VSphereAllProxy:   os.Getenv("VSPHERE_ALL_PROXY"),
		VSphereHostFanout: getEnvInt("VSPHERE_HOST_FANOUT", 8),
	}

	counts, err := ParseFailoverCounts(getEnv("FAILOVER_COUNTS", "1,2"))
	if err != nil {
		return nil, fmt.Errorf("FAILOVER_COUNTS: %w", err)
	}
	cfg.FailoverCounts = counts

	if cfg.RateLimitDefault < 1 || cfg.RateLimitDefault > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT must be between 1 and 10000, got %d", cfg.RateLimitDefault)
	}
	if cfg.SnapshotTTL < 0 {
		return nil, fmt.Errorf("SNAPSHOT_CACHE_TTL must not be negative, got %d", cfg.SnapshotTTL)
	}
	if cfg.VSphereHostFanout < 1 || cfg.VSphereHostFanout > 128 {
		return nil, fmt.Errorf("VSPHERE_HOST_FANOUT must be between 1 and 128, got %d", cfg.VSphereHostFanout)
	}

	return cfg, nil
}

// ParseFailoverCounts parses a comma-separated list of host-loss counts.
// Shared with the CLI's --failover flag.
func ParseFailoverCounts(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	counts := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("entry %q is not a number", trimmed)
		}
		if n < 1 {
			return nil, fmt.Errorf("counts must be at least 1, got %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("at least one count required")
	}
	return counts, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
