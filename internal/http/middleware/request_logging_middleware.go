package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// StructuredRequestLogger emits one slog line per request on the app's
// OTel-enriched logging path. Liveness and readiness polls are demoted to
// debug so orchestrator probes do not drown out signup and login traffic.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		requestID := chimiddleware.GetReqID(r.Context())
		routePattern := ""
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			routePattern = routeCtx.RoutePattern()
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", requestID,
			"client_ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			attrs = append(attrs, "subject", claims.Subject)
		}

		switch {
		// A failing readiness poll answers 503 on every probe; the probe
		// runner already records the unhealthy dependency, so the request
		// line stays quiet.
		case isHealthProbe(r.URL.Path):
			slog.DebugContext(r.Context(), "http.request", attrs...)
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(r.Context(), "http.request", attrs...)
		default:
			slog.InfoContext(r.Context(), "http.request", attrs...)
		}
	})
}

func isHealthProbe(path string) bool {
	return path == "/health/live" || path == "/health/ready"
}
