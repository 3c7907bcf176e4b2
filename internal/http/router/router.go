package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"user-management-service/internal/domain"
	"user-management-service/internal/health"
	"user-management-service/internal/http/handler"
	"user-management-service/internal/http/middleware"
	"user-management-service/internal/http/response"
	"user-management-service/internal/security"
)

// GlobalRateLimiterFunc and AuthRateLimiterFunc are distinct names for the
// two limiter middlewares so the injector can tell them apart.
type GlobalRateLimiterFunc func(http.Handler) http.Handler

type AuthRateLimiterFunc func(http.Handler) http.Handler

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	AdminHandler      *handler.AdminHandler
	JWTManager        *security.JWTManager
	CORSOrigins       []string
	APIRateLimitRPM   int
	AuthRateLimitRPM  int
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/signup", dep.AuthHandler.Signup)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/verify-email", dep.AuthHandler.VerifyEmail)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(dep.JWTManager))
			r.Get("/me", dep.UserHandler.Me)
			r.Put("/me", dep.UserHandler.UpdateMe)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(dep.JWTManager))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/users", dep.AdminHandler.ListUsers)
			r.Get("/users/{id}", dep.AdminHandler.GetUser)
			r.Put("/users/{id}/role", dep.AdminHandler.ChangeRole)
			r.Put("/users/{id}/professional-status", dep.AdminHandler.SetProfessionalStatus)
			r.Get("/users/{id}/audit-logs", dep.AdminHandler.AuditLogs)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
