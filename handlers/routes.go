// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Reports
		{Method: http.MethodGet, Path: "/api/v1/clusters", Handler: h.GetClusters},
		{Method: http.MethodGet, Path: "/api/v1/report", Handler: h.GetClusterReport},
		{Method: http.MethodPost, Path: "/api/v1/report", Handler: h.PostManualReport},
		{Method: http.MethodGet, Path: "/api/v1/hosts", Handler: h.GetHostReports},

		// Documentation
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},
	}
}
