package middleware

import (
	"context"
	"net/http"
	"strings"

	"user-management-service/internal/http/response"
	"user-management-service/internal/observability"
	"user-management-service/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

func AuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				raw = strings.TrimSpace(auth[7:])
			}
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
