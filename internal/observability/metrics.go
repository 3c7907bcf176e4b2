package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"user-management-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

type AppMetrics struct {
	signupCounter            metric.Int64Counter
	loginCounter             metric.Int64Counter
	accountLockCounter       metric.Int64Counter
	emailVerificationCounter metric.Int64Counter
	roleChangeCounter        metric.Int64Counter
	profileUpdateCounter     metric.Int64Counter
	authReqDuration          metric.Float64Histogram
	tokenValidationCounter   metric.Int64Counter
	guardEventCounter        metric.Int64Counter
	rateLimitDecisionCounter metric.Int64Counter
	rateLimitRetryAfter      metric.Float64Histogram
	adminListReqDuration     metric.Float64Histogram
	adminListPageSize        metric.Float64Histogram
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := telemetryResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("user-management-service")
	signupCounter, err := meter.Int64Counter("users.signup.attempts")
	if err != nil {
		return nil, err
	}
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return nil, err
	}
	accountLockCounter, err := meter.Int64Counter("auth.account.locks")
	if err != nil {
		return nil, err
	}
	emailVerificationCounter, err := meter.Int64Counter("users.email_verification.events")
	if err != nil {
		return nil, err
	}
	roleChangeCounter, err := meter.Int64Counter("admin.role.changes")
	if err != nil {
		return nil, err
	}
	profileUpdateCounter, err := meter.Int64Counter("users.profile.events")
	if err != nil {
		return nil, err
	}
	authReqDuration, err := meter.Float64Histogram("auth.request.duration", metric.WithUnit("s"), metric.WithDescription("Duration of auth endpoint requests in seconds"))
	if err != nil {
		return nil, err
	}
	tokenValidationCounter, err := meter.Int64Counter("auth.access_token.validation.events")
	if err != nil {
		return nil, err
	}
	guardEventCounter, err := meter.Int64Counter("http.guard.events")
	if err != nil {
		return nil, err
	}
	rateLimitDecisionCounter, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	rateLimitRetryAfter, err := meter.Float64Histogram(
		"http.rate_limit.retry_after",
		metric.WithUnit("s"),
		metric.WithDescription("Retry-after duration in seconds for throttled requests"),
	)
	if err != nil {
		return nil, err
	}
	adminListReqDuration, err := meter.Float64Histogram(
		"admin.list.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of admin list endpoint requests in seconds"),
	)
	if err != nil {
		return nil, err
	}
	adminListPageSize, err := meter.Float64Histogram(
		"admin.list.page_size",
		metric.WithDescription("Requested page size for admin list endpoints"),
	)
	if err != nil {
		return nil, err
	}
	healthCheckResultCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthCheckDuration, err := meter.Float64Histogram(
		"health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"),
	)
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		signupCounter:            signupCounter,
		loginCounter:             loginCounter,
		accountLockCounter:       accountLockCounter,
		emailVerificationCounter: emailVerificationCounter,
		roleChangeCounter:        roleChangeCounter,
		profileUpdateCounter:     profileUpdateCounter,
		authReqDuration:          authReqDuration,
		tokenValidationCounter:   tokenValidationCounter,
		guardEventCounter:        guardEventCounter,
		rateLimitDecisionCounter: rateLimitDecisionCounter,
		rateLimitRetryAfter:      rateLimitRetryAfter,
		adminListReqDuration:     adminListReqDuration,
		adminListPageSize:        adminListPageSize,
		healthCheckResultCounter: healthCheckResultCounter,
		healthCheckDuration:      healthCheckDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func RecordSignup(ctx context.Context, status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.signupCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordLogin(ctx context.Context, status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAccountLock(ctx context.Context) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.accountLockCounter.Add(ctx, 1)
}

func RecordEmailVerification(ctx context.Context, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.emailVerificationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordRoleChange(ctx context.Context, newRole, status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.roleChangeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("new_role", newRole),
		attribute.String("status", status),
	))
}

func RecordProfileEvent(ctx context.Context, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.profileUpdateCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.authReqDuration.Record(
		ctx,
		duration.Seconds(),
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		),
	)
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordGuardEvent covers the request guards that sit in front of the
// handlers (cors, body_limit).
func RecordGuardEvent(ctx context.Context, guard, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.guardEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("guard", guard),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope string, retryAfter time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

func RecordAdminListRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.adminListReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordAdminListPageSize(ctx context.Context, endpoint string, pageSize int) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.adminListPageSize.Record(ctx, float64(pageSize), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}
