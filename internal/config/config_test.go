package config

import (
	"strings"
	"testing"
	"time"
)

func validConfigForTest() *Config {
	return &Config{
		Env:                       "development",
		HTTPPort:                  "8080",
		DatabaseURL:               "postgres://x",
		JWTIssuer:                 "user-management-service",
		JWTAudience:               "user-management-api",
		JWTAccessSecret:           "abcdefghijklmnopqrstuvwxyz123456",
		JWTAccessTTL:              15 * time.Minute,
		AuthMaxFailedLogins:       5,
		AuthRateLimitPerMin:       30,
		APIRateLimitPerMin:        120,
		RateLimitFailureMode:      "fail_closed",
		ShutdownTimeout:           20 * time.Second,
		HealthProbeTimeout:        time.Second,
		OTELExporterOTLPEndpoint:  "localhost:4317",
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfigForTest().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingEssentials(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"short jwt secret", func(c *Config) { c.JWTAccessSecret = "short" }, "JWT_ACCESS_SECRET"},
		{"zero access ttl", func(c *Config) { c.JWTAccessTTL = 0 }, "JWT_ACCESS_TTL"},
		{"oversized access ttl", func(c *Config) { c.JWTAccessTTL = 2 * time.Hour }, "JWT_ACCESS_TTL"},
		{"zero lockout threshold", func(c *Config) { c.AuthMaxFailedLogins = 0 }, "AUTH_MAX_FAILED_LOGINS"},
		{"distributed without redis", func(c *Config) { c.RateLimitDistributed = true }, "REDIS_URL"},
		{"bad failure mode", func(c *Config) { c.RateLimitFailureMode = "maybe" }, "RATE_LIMIT_FAILURE_MODE"},
		{"bootstrap email without password", func(c *Config) {
			c.BootstrapAdminEmail = "admin@example.com"
			c.BootstrapAdminNickname = "admin"
		}, "BOOTSTRAP_ADMIN"},
		{"bad log level", func(c *Config) { c.OTELLogLevel = "loud" }, "OTEL_LOG_LEVEL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfigForTest()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected %q in error, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_ACCESS_SECRET", "abcdefghijklmnopqrstuvwxyz123456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected default port %q", cfg.HTTPPort)
	}
	if cfg.AuthMaxFailedLogins != 5 {
		t.Fatalf("unexpected default lockout threshold %d", cfg.AuthMaxFailedLogins)
	}
	if cfg.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected default access ttl %v", cfg.JWTAccessTTL)
	}
	if cfg.RateLimitFailureMode != "fail_closed" {
		t.Fatalf("unexpected default failure mode %q", cfg.RateLimitFailureMode)
	}
}
