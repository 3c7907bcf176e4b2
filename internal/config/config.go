package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	JWTIssuer       string
	JWTAudience     string
	JWTAccessSecret string
	JWTAccessTTL    time.Duration

	AuthMaxFailedLogins int
	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	CORSAllowedOrigins []string

	RedisURL             string
	RateLimitDistributed bool
	RateLimitFailureMode string
	RateLimitKeyPrefix   string

	BootstrapAdminNickname string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	ShutdownTimeout    time.Duration
	HealthProbeTimeout time.Duration
	HealthStartupGrace time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTIssuer:       getEnv("JWT_ISSUER", "user-management-service"),
		JWTAudience:     getEnv("JWT_AUDIENCE", "user-management-api"),
		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		AuthMaxFailedLogins: getEnvInt("AUTH_MAX_FAILED_LOGINS", 5),
		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 120),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		RedisURL:             os.Getenv("REDIS_URL"),
		RateLimitDistributed: getEnvBool("RATE_LIMIT_DISTRIBUTED", false),
		RateLimitFailureMode: strings.ToLower(getEnv("RATE_LIMIT_FAILURE_MODE", "fail_closed")),
		RateLimitKeyPrefix:   getEnv("RATE_LIMIT_KEY_PREFIX", "rl"),

		BootstrapAdminNickname: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_NICKNAME")),
		BootstrapAdminEmail:    strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "user-management-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTAccessTTL = accessTTL

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = shutdownTimeout

	probeTimeout, err := time.ParseDuration(getEnv("HEALTH_PROBE_TIMEOUT", "1s"))
	if err != nil {
		return nil, fmt.Errorf("parse HEALTH_PROBE_TIMEOUT: %w", err)
	}
	cfg.HealthProbeTimeout = probeTimeout

	startupGrace, err := time.ParseDuration(getEnv("HEALTH_STARTUP_GRACE", "0s"))
	if err != nil {
		return nil, fmt.Errorf("parse HEALTH_STARTUP_GRACE: %w", err)
	}
	cfg.HealthStartupGrace = startupGrace

	metricsInterval, err := time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	cfg.OTELMetricsExportInterval = metricsInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTAccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 1h")
	}
	if c.AuthMaxFailedLogins <= 0 {
		errs = append(errs, "AUTH_MAX_FAILED_LOGINS must be > 0")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.RateLimitDistributed && c.RedisURL == "" {
		errs = append(errs, "REDIS_URL is required when RATE_LIMIT_DISTRIBUTED=true")
	}
	if c.RateLimitFailureMode != "fail_open" && c.RateLimitFailureMode != "fail_closed" {
		errs = append(errs, "RATE_LIMIT_FAILURE_MODE must be fail_open or fail_closed")
	}
	if c.BootstrapAdminEmail != "" && (c.BootstrapAdminNickname == "" || c.BootstrapAdminPassword == "") {
		errs = append(errs, "BOOTSTRAP_ADMIN_NICKNAME and BOOTSTRAP_ADMIN_PASSWORD are required with BOOTSTRAP_ADMIN_EMAIL")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
