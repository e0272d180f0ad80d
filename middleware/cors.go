// ABOUTME: CORS middleware with an origin whitelist
// ABOUTME: Echoes allowed origins, handles preflight OPTIONS with 204

package middleware

import "net/http"

// CORSWithConfig returns middleware that adds CORS headers for origins in
// the allow list. A "*" entry allows any origin; the request's origin is
// still echoed back so credentials keep working. Requests without an
// Origin header (same-origin) pass through untouched.
func CORSWithConfig(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[o] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			} else if r.Method == http.MethodOptions {
				// Preflight from a disallowed origin completes without
				// CORS headers; the browser enforces the denial.
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
