package middleware

import (
	"net/http"

	"user-management-service/internal/domain"
	"user-management-service/internal/http/response"
)

// RequireRole gates a route on the authenticated principal's role. It
// assumes AuthMiddleware has already populated the claims context.
func RequireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			for _, role := range allowed {
				if claims.Role == role.String() {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]string{"role": claims.Role})
		})
	}
}
