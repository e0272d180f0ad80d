// ABOUTME: Tests for request logging middleware
// ABOUTME: Verifies path sanitization, correlation headers and status capture

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSanitizePath_RemovesNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "path with newline injection",
			input: "/api/v1/report\nAdmin access granted for user attacker",
			want:  "/api/v1/reportAdmin access granted for user attacker",
		},
		{
			name:  "path with carriage return",
			input: "/api/test\rmalicious",
			want:  "/api/testmalicious",
		},
		{
			name:  "path with CRLF",
			input: "/api/test\r\ninjected line",
			want:  "/api/testinjected line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizePath(tt.input)
			if got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePath_RemovesControlCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"null byte", "/api\x00/test", "/api/test"},
		{"bell character", "/api\a/test", "/api/test"},
		{"delete character", "/api\x7f/test", "/api/test"},
		{"clean path untouched", "/api/v1/clusters", "/api/v1/clusters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizePath(tt.input)
			if got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogRequest_SetsRequestIDHeader(t *testing.T) {
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	id := rec.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("Expected X-Request-ID header to be set")
	}
	// 8 random bytes hex encoded
	if len(id) != 16 {
		t.Errorf("Expected 16-char request ID, got %q", id)
	}
}

func TestLogRequest_UniqueIDs(t *testing.T) {
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get("X-Request-ID")
		if seen[id] {
			t.Fatalf("Duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestLogRequest_PassesThroughStatus(t *testing.T) {
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
