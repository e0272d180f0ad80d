// ABOUTME: Middleware type, chaining helper and shared JSON error writer
// ABOUTME: First middleware in a chain is the outermost wrapper

package middleware

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies middleware to a handler in declaration order: the first
// middleware executes first. Chain(h, logging, cors) is logging(cors(h)).
func Chain(h http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// writeJSONError writes an error response as JSON with the given status
// code, matching the format the handlers package uses.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{
		Error: message,
		Code:  code,
	})
}
