package api

import (
	"net/http"

	"github.com/parishops/sla-monitor/internal/model"
)

// StaffRoleHeader carries the authenticated staff role, set by the
// front-office session layer that proxies requests to this service.
const StaffRoleHeader = "X-Staff-Role"

// RequireRole gates a route to the given staff roles. Authentication
// itself happens upstream; this only enforces the explicit role context.
func RequireRole(roles ...model.StaffRole) func(http.Handler) http.Handler {
	allowed := make(map[model.StaffRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := model.StaffRole(r.Header.Get(StaffRoleHeader))
			if role == "" {
				RespondError(w, http.StatusUnauthorized, "missing staff role")
				return
			}
			if !allowed[role] {
				RespondError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
