// ABOUTME: Tests for the check command threshold gates
// ABOUTME: Verifies pass/fail exit codes and result formatting

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunCheck_Passes(t *testing.T) {
	resetFlags(t)
	t.Setenv("FAILOVER_COUNTS", "1")
	snapshotPath = writeSnapshotFile(t)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "PASSED") {
		t.Errorf("Expected PASSED summary, got %s", buf.String())
	}
}

func TestRunCheck_FailsOnHeadroom(t *testing.T) {
	resetFlags(t)
	// The 2-host projection leaves negative headroom on the fixture.
	t.Setenv("FAILOVER_COUNTS", "1,2")
	snapshotPath = writeSnapshotFile(t)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitError {
		t.Fatalf("Expected exit 1, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "FAILED") {
		t.Errorf("Expected FAILED summary, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "Failover headroom") {
		t.Errorf("Expected the headroom check to be named, got %s", buf.String())
	}
}

func TestRunCheck_FailsOnUsage(t *testing.T) {
	resetFlags(t)
	t.Setenv("FAILOVER_COUNTS", "1")
	snapshotPath = writeSnapshotFile(t)
	maxUsagePercent = 40 // fixture sits at 50%

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitError {
		t.Fatalf("Expected exit 1, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "RAM usage") {
		t.Errorf("Expected the usage check to be named, got %s", buf.String())
	}
}

func TestRunCheck_JSONOutput(t *testing.T) {
	resetFlags(t)
	t.Setenv("FAILOVER_COUNTS", "1")
	snapshotPath = writeSnapshotFile(t)
	outputFormat = "json"

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, buf.String())
	}

	var resp struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string  `json:"name"`
			Value  float64 `json:"value"`
			Passed bool    `json:"passed"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if resp.Status != "passed" {
		t.Errorf("Expected status passed, got %s", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Errorf("Expected 2 checks, got %d", len(resp.Checks))
	}
}

func TestRunCheck_InvalidThresholds(t *testing.T) {
	resetFlags(t)
	snapshotPath = writeSnapshotFile(t)
	maxUsagePercent = 150

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitError {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "--max-usage") {
		t.Errorf("Expected flag name in error, got %s", buf.String())
	}
}

func TestRunCheck_ClusterNotFound(t *testing.T) {
	resetFlags(t)
	snapshotPath = writeSnapshotFile(t)
	checkCluster = "other"

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf); code != exitClusterNotFound {
		t.Errorf("Expected exit %d, got %d: %s", exitClusterNotFound, code, buf.String())
	}
}
