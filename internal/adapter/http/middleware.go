package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// AdminTokenHeader carries the shared-secret credential required on
// mutating endpoints.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdmin rejects requests whose admin token header does not match
// the configured shared secret. An absent or wrong credential is an
// authorization failure, never a validation one.
func RequireAdmin(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(AdminTokenHeader)
			if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				logger.Warn("unauthorized request",
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeJSON(w, http.StatusUnauthorized, apiError{
					ErrorKind: "unauthorized",
					Message:   "missing or invalid admin credential",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
