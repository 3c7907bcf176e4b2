package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"user-management-service/internal/app"
	"user-management-service/internal/config"
	"user-management-service/internal/database"
	"user-management-service/internal/health"
	"user-management-service/internal/http/handler"
	"user-management-service/internal/http/middleware"
	"user-management-service/internal/http/router"
	"user-management-service/internal/observability"
	"user-management-service/internal/repository"
	"user-management-service/internal/security"
	"user-management-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewAuditLogRepository,
)

var SecuritySet = wire.NewSet(provideJWTManager)

var ServiceSet = wire.NewSet(
	provideUserService,
	provideTokenService,
	service.NewDevRegistrationNotifier,
	wire.Bind(new(service.RegistrationNotifier), new(*service.DevRegistrationNotifier)),
	wire.Bind(new(service.UserServiceInterface), new(*service.UserService)),
	wire.Bind(new(service.TokenIssuer), new(*service.TokenService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewAdminHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies schema migrations and the bootstrap seed against
// an already-open database. Used by the seed CLI.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() (*database.SeedReport, error) {
	if err := database.Migrate(m.db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	report, err := database.Seed(m.db, m.cfg)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	report, err := database.Seed(db, cfg)
	if err != nil {
		return nil, err
	}
	if report.AdminCreated {
		logger.Info("bootstrap admin created", "nickname", report.AdminNickname)
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) (redis.UniversalClient, error) {
	if !cfg.RateLimitDistributed {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret)
}

func provideUserService(
	cfg *config.Config,
	users repository.UserRepository,
	audits repository.AuditLogRepository,
	notifier service.RegistrationNotifier,
	logger *slog.Logger,
) *service.UserService {
	return service.NewUserService(users, audits, notifier, logger, cfg.AuthMaxFailedLogins)
}

func provideTokenService(cfg *config.Config, jwt *security.JWTManager) *service.TokenService {
	return service.NewTokenService(jwt, cfg.JWTAccessTTL)
}

func limiterFailureMode(cfg *config.Config) middleware.FailureMode {
	if cfg.RateLimitFailureMode == string(middleware.FailOpen) {
		return middleware.FailOpen
	}
	return middleware.FailClosed
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitDistributed && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitKeyPrefix+":api")
		return router.GlobalRateLimiterFunc(middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware())
	}
	return router.GlobalRateLimiterFunc(middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware())
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RateLimitDistributed && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitKeyPrefix+":auth")
		return router.AuthRateLimiterFunc(middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			limiterFailureMode(cfg),
			"auth",
		).Middleware())
	}
	return router.AuthRateLimiterFunc(middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute).Middleware())
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	jwt *security.JWTManager,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		AdminHandler:      adminHandler,
		JWTManager:        jwt,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RateLimitDistributed {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	return health.NewProbeRunner(cfg.HealthProbeTimeout, cfg.HealthStartupGrace, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
