package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Session.TTL != 720*time.Hour {
		t.Fatalf("expected default session ttl 720h, got %v", cfg.Session.TTL)
	}
	if cfg.Sheets.Timeout != 15*time.Second {
		t.Fatalf("expected default sheets timeout, got %v", cfg.Sheets.Timeout)
	}
	if cfg.Orders.InFlightTTL != 30*time.Second {
		t.Fatalf("unexpected in-flight ttl %v", cfg.Orders.InFlightTTL)
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
	if cfg.Messaging.WhatsAppBaseURL != "https://wa.me" {
		t.Fatalf("unexpected whatsapp base url %q", cfg.Messaging.WhatsAppBaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvSheetsOrdersURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvSheetsOrdersURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvOrderTimezone, "Not/AZone")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid timezone to fail")
	}
}

func TestLoad_NegativeRate(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSheetsRatePerSec, "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative rate to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvSessionSecret, "secret")
	t.Setenv(EnvSheetsProductsURL, "https://sheets.test/api/v1/lemons")
	t.Setenv(EnvSheetsUsersURL, "https://sheets.test/api/v1/users")
	t.Setenv(EnvSheetsAddressesURL, "https://sheets.test/api/v1/addresses")
	t.Setenv(EnvSheetsOrdersURL, "https://sheets.test/api/v1/orders")
	t.Setenv(EnvSheetsFeedbackURL, "https://sheets.test/api/v1/feedback")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

func TestOrdersLocationDefaultsToUTC(t *testing.T) {
	loc, err := OrdersConfig{}.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
