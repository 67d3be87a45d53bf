package handler

import (
	"net/http"

	"github.com/kamau/sugarbloom-api/internal/service"

	"go.uber.org/zap"
)

// AdminOnly gates the management surface on the process-wide session. The
// check fails closed: a loading state, a missing profile, or any role other
// than admin yields 403 rather than waiting for state to settle.
func AdminOnly(session *service.SessionManager, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !session.IsAdmin() {
				logger.Warn("admin access denied",
					zap.String("path", r.URL.Path),
					zap.String("state", session.State()),
				)
				writeError(w, http.StatusForbidden, "Access Denied: admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
