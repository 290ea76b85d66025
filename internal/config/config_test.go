package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvVars устанавливает переменные окружения для теста и возвращает
// функцию очистки. Всегда вызывать defer cleanup().
func setEnvVars(t *testing.T, vars map[string]string) func() {
	t.Helper()

	// Сохраняем оригинальные значения
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for k := range vars {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
	}

	// Устанавливаем новые
	for k, v := range vars {
		os.Setenv(k, v)
	}

	return func() {
		for k := range vars {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// clearAllGWEnvVars очищает все переменные окружения GW_* для чистого теста.
func clearAllGWEnvVars(t *testing.T) func() {
	t.Helper()
	keys := []string{
		"GW_PORT", "GW_LOG_LEVEL", "GW_LOG_FORMAT",
		"GW_AUTH_URL", "GW_USERS_URL", "GW_NOTIFY_URL", "GW_SCAN_URL",
		"GW_UPSTREAM_TIMEOUT", "GW_NOTIFY_TIMEOUT",
		"GW_JWT_SECRET", "GW_JWKS_URL", "GW_JWKS_REFRESH_INTERVAL", "GW_JWT_LEEWAY",
		"GW_UPLOADS_DIR", "GW_MAX_UPLOAD_SIZE", "GW_ANON_UPLOAD_TTL", "GW_SWEEP_INTERVAL",
		"GW_HTTP_READ_TIMEOUT", "GW_HTTP_WRITE_TIMEOUT", "GW_HTTP_IDLE_TIMEOUT",
		"GW_SHUTDOWN_TIMEOUT",
		"GW_DEPHEALTH_CHECK_INTERVAL", "GW_DEPHEALTH_GROUP", "GW_DEPHEALTH_ISENTRY",
	}
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// requiredEnvVars возвращает минимальный набор обязательных переменных.
func requiredEnvVars() map[string]string {
	return map[string]string{
		"GW_AUTH_URL":   "http://auth:3004",
		"GW_USERS_URL":  "http://users:3002",
		"GW_NOTIFY_URL": "http://notify:3006",
		"GW_JWT_SECRET": "test-secret",
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cleanup := clearAllGWEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, requiredEnvVars())
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8040 {
		t.Errorf("Port: ожидалось 8040, получено %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось info, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось json, получено %q", cfg.LogFormat)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout: ожидалось 10s, получено %v", cfg.UpstreamTimeout)
	}
	if cfg.NotifyTimeout != 5*time.Second {
		t.Errorf("NotifyTimeout: ожидалось 5s, получено %v", cfg.NotifyTimeout)
	}
	if cfg.MaxUploadSize != 5<<20 {
		t.Errorf("MaxUploadSize: ожидалось %d, получено %d", 5<<20, cfg.MaxUploadSize)
	}
	if cfg.AnonUploadTTL != time.Hour {
		t.Errorf("AnonUploadTTL: ожидалось 1h, получено %v", cfg.AnonUploadTTL)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval: ожидалось 5m, получено %v", cfg.SweepInterval)
	}
	if cfg.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir: ожидалось ./uploads, получено %q", cfg.UploadsDir)
	}
	if cfg.ScanURL != "" {
		t.Errorf("ScanURL: ожидалось пустое значение, получено %q", cfg.ScanURL)
	}
	if cfg.DephealthGroup != "jobportal" {
		t.Errorf("DephealthGroup: ожидалось jobportal, получено %q", cfg.DephealthGroup)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 5s, получено %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cleanup := clearAllGWEnvVars(t)
	defer cleanup()

	required := []string{"GW_AUTH_URL", "GW_USERS_URL", "GW_NOTIFY_URL"}
	for _, missing := range required {
		t.Run(missing, func(t *testing.T) {
			vars := requiredEnvVars()
			delete(vars, missing)
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка при отсутствии %s", missing)
			}
		})
	}
}

func TestLoad_RequiresSecretOrJWKS(t *testing.T) {
	cleanup := clearAllGWEnvVars(t)
	defer cleanup()

	vars := requiredEnvVars()
	delete(vars, "GW_JWT_SECRET")
	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	// Ни секрета, ни JWKS — ошибка
	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка без GW_JWT_SECRET и GW_JWKS_URL")
	}

	// JWKS вместо секрета — валидная конфигурация
	os.Setenv("GW_JWKS_URL", "http://auth:3004/.well-known/jwks.json")
	defer os.Unsetenv("GW_JWKS_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if cfg.JWKSURL == "" {
		t.Error("JWKSURL должен быть загружен")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cleanup := clearAllGWEnvVars(t)
	defer cleanup()

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"нечисловой порт", "GW_PORT", "abc"},
		{"неверный уровень логов", "GW_LOG_LEVEL", "verbose"},
		{"неверный формат логов", "GW_LOG_FORMAT", "xml"},
		{"неверная длительность", "GW_UPSTREAM_TIMEOUT", "10 seconds"},
		{"нулевой лимит загрузки", "GW_MAX_UPLOAD_SIZE", "0"},
		{"неверное булево", "GW_DEPHEALTH_ISENTRY", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := requiredEnvVars()
			vars[tt.key] = tt.val
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_CustomValues(t *testing.T) {
	cleanup := clearAllGWEnvVars(t)
	defer cleanup()

	vars := requiredEnvVars()
	vars["GW_PORT"] = "8045"
	vars["GW_LOG_LEVEL"] = "debug"
	vars["GW_LOG_FORMAT"] = "text"
	vars["GW_ANON_UPLOAD_TTL"] = "30m"
	vars["GW_SCAN_URL"] = "http://scan:3008"
	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8045 {
		t.Errorf("Port: ожидалось 8045, получено %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: ожидалось debug, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: ожидалось text, получено %q", cfg.LogFormat)
	}
	if cfg.AnonUploadTTL != 30*time.Minute {
		t.Errorf("AnonUploadTTL: ожидалось 30m, получено %v", cfg.AnonUploadTTL)
	}
	if cfg.ScanURL != "http://scan:3008" {
		t.Errorf("ScanURL: получено %q", cfg.ScanURL)
	}
}
