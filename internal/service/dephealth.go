// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Gateway мониторит четыре сервиса-коллаборатора:
//   - auth-сервис — HTTP checker к health endpoint (critical)
//   - хранилище пользователей — HTTP checker (critical)
//   - сервис уведомлений — HTTP checker (non-critical: уведомления best-effort)
//   - сервис сканирования — HTTP checker (non-critical, только если настроен)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения (gateway)
	ServiceID string
	// Group — имя группы в метриках (GW_DEPHEALTH_GROUP)
	Group string
	// AuthURL, UsersURL, NotifyURL — URL коллабораторов
	AuthURL   string
	UsersURL  string
	NotifyURL string
	// ScanURL — URL сервиса сканирования; пустой — не мониторится
	ScanURL string
	// CheckInterval — интервал проверки (GW_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
	// IsEntry — при true добавляет лейбл isentry=yes ко всем зависимостям
	IsEntry bool
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	cfg DephealthConfig,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	// depOpts собирает опции одной HTTP-зависимости
	depOpts := func(baseURL string, critical bool) []dephealth.DependencyOption {
		opts := []dephealth.DependencyOption{
			dephealth.FromURL(baseURL),
			dephealth.WithHTTPHealthPath("/api/health"),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(critical),
		}
		if cfg.IsEntry {
			opts = append(opts, dephealth.WithLabel("isentry", "yes"))
		}
		return opts
	}

	opts := make([]dephealth.Option, 0, 6+len(extraOpts))
	opts = append(opts,
		dephealth.WithLogger(logger),
		// Auth-сервис и хранилище пользователей — критичные:
		// без них основные операции Gateway не работают
		dephealth.HTTP("auth-service", depOpts(cfg.AuthURL, true)...),
		dephealth.HTTP("user-store", depOpts(cfg.UsersURL, true)...),
		// Сервис уведомлений — некритичный: доставка best-effort
		dephealth.HTTP("notification-service", depOpts(cfg.NotifyURL, false)...),
	)
	if cfg.ScanURL != "" {
		opts = append(opts, dephealth.HTTP("scan-service", depOpts(cfg.ScanURL, false)...))
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
