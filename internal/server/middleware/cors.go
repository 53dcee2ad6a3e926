package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORS lets browser clients on origins read API responses. No origins, or
// a "*" among them, admits every origin. The API only serves GET, so
// every OPTIONS request is answered here as a preflight.
func CORS(origins ...string) Middleware {
	anyOrigin := len(origins) == 0 || slices.Contains(origins, "*")
	allowed := func(origin string) bool {
		return slices.ContainsFunc(origins, func(o string) bool { return strings.EqualFold(o, origin) })
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			switch {
			case anyOrigin:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed(origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			h.Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
