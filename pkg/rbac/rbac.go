// Package rbac gates routes by the role of the authenticated caller.
package rbac

import (
	"net/http"

	"github.com/nutrieve/nutrieve/pkg/middleware"
	"github.com/nutrieve/nutrieve/pkg/response"
)

// HasRole allows the request only when the caller holds one of roles.
// middleware.Auth must run first; anonymous callers get 401.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Authorization header is required")
				return
			}
			if !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
