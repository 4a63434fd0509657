package middleware

import (
	"net/http"
	"runtime/debug"
)

// Recover turns a panic into a 500 JSON response.
// It runs outside RequestID, so the ID is read back from the response header.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				if requestID == "" {
					requestID = w.Header().Get("X-Request-ID")
				}

				m.log.WithRequestID(requestID).Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("client_ip", m.ClientIP(r)).
					Msg("panic recovered")

				writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
