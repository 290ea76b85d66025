// Пакет config — загрузка и валидация конфигурации Gateway
// из переменных окружения. Конфигурация неизменяема после старта
// и передаётся по ссылке в роутер, оркестратор и auth gate.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// ServiceName — имя сервиса в логах, health-ответах и уведомлениях.
const ServiceName = "gateway"

// Config содержит все параметры конфигурации Gateway.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8040-8049)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Сервисы-коллабораторы ---

	// Базовый URL auth-сервиса (signup/login)
	AuthURL string
	// Базовый URL хранилища пользователей
	UsersURL string
	// Базовый URL сервиса уведомлений
	NotifyURL string
	// Базовый URL сервиса сканирования загрузок (пустой — сканирование выключено)
	ScanURL string
	// Таймаут HTTP-клиентов к коллабораторам
	UpstreamTimeout time.Duration
	// Таймаут отправки одного уведомления
	NotifyTimeout time.Duration

	// --- Аутентификация ---

	// Общий секрет для проверки HS256 JWT
	JWTSecret string
	// URL JWKS endpoint auth-сервиса (альтернатива секрету, RS256)
	JWKSURL string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// --- Хранилище резюме ---

	// Корневая директория хранения загруженных резюме
	UploadsDir string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64
	// TTL анонимных загрузок
	AnonUploadTTL time.Duration
	// Интервал запуска sweeper'а просроченных загрузок
	SweepInterval time.Duration

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- Мониторинг зависимостей ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Пометка isentry=yes для входной вершины графа
	DephealthIsEntry bool
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// GW_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("GW_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("GW_PORT: %w", err)
	}

	// GW_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("GW_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("GW_LOG_LEVEL: %w", err)
	}

	// GW_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("GW_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("GW_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Сервисы-коллабораторы ---

	// GW_AUTH_URL — базовый URL auth-сервиса (обязательный)
	cfg.AuthURL, err = getEnvRequired("GW_AUTH_URL")
	if err != nil {
		return nil, err
	}

	// GW_USERS_URL — базовый URL хранилища пользователей (обязательный)
	cfg.UsersURL, err = getEnvRequired("GW_USERS_URL")
	if err != nil {
		return nil, err
	}

	// GW_NOTIFY_URL — базовый URL сервиса уведомлений (обязательный)
	cfg.NotifyURL, err = getEnvRequired("GW_NOTIFY_URL")
	if err != nil {
		return nil, err
	}

	// GW_SCAN_URL — базовый URL сервиса сканирования (опциональный)
	cfg.ScanURL = getEnvDefault("GW_SCAN_URL", "")

	// GW_UPSTREAM_TIMEOUT — таймаут HTTP-клиентов к коллабораторам (по умолчанию 10s)
	cfg.UpstreamTimeout, err = getEnvDuration("GW_UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_UPSTREAM_TIMEOUT: %w", err)
	}

	// GW_NOTIFY_TIMEOUT — таймаут отправки уведомления (по умолчанию 5s)
	cfg.NotifyTimeout, err = getEnvDuration("GW_NOTIFY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_NOTIFY_TIMEOUT: %w", err)
	}

	// --- Аутентификация ---

	// GW_JWT_SECRET — общий секрет HS256
	cfg.JWTSecret = getEnvDefault("GW_JWT_SECRET", "")

	// GW_JWKS_URL — JWKS endpoint auth-сервиса (альтернативный режим RS256)
	cfg.JWKSURL = getEnvDefault("GW_JWKS_URL", "")

	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		return nil, fmt.Errorf("требуется GW_JWT_SECRET или GW_JWKS_URL")
	}

	// GW_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 5m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("GW_JWKS_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("GW_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// GW_JWT_LEEWAY — допустимое отклонение времени JWT (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("GW_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_JWT_LEEWAY: %w", err)
	}

	// --- Хранилище резюме ---

	// GW_UPLOADS_DIR — директория хранения резюме (по умолчанию ./uploads)
	cfg.UploadsDir = getEnvDefault("GW_UPLOADS_DIR", "./uploads")

	// GW_MAX_UPLOAD_SIZE — максимальный размер файла (по умолчанию 5 MiB)
	cfg.MaxUploadSize, err = getEnvInt64("GW_MAX_UPLOAD_SIZE", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("GW_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("GW_MAX_UPLOAD_SIZE: значение должно быть > 0")
	}

	// GW_ANON_UPLOAD_TTL — TTL анонимных загрузок (по умолчанию 1h)
	cfg.AnonUploadTTL, err = getEnvDuration("GW_ANON_UPLOAD_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("GW_ANON_UPLOAD_TTL: %w", err)
	}

	// GW_SWEEP_INTERVAL — интервал sweeper'а (по умолчанию 5m)
	cfg.SweepInterval, err = getEnvDuration("GW_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("GW_SWEEP_INTERVAL: %w", err)
	}

	// --- HTTP Server Timeouts ---

	// GW_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("GW_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_HTTP_READ_TIMEOUT: %w", err)
	}

	// GW_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("GW_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// GW_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("GW_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	// GW_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("GW_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// GW_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 30s)
	cfg.DephealthCheckInterval, err = getEnvDuration("GW_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GW_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// GW_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию jobportal)
	cfg.DephealthGroup = getEnvDefault("GW_DEPHEALTH_GROUP", "jobportal")

	// GW_DEPHEALTH_ISENTRY — пометка входной вершины графа (по умолчанию false)
	cfg.DephealthIsEntry, err = getEnvBool("GW_DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("GW_DEPHEALTH_ISENTRY: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
