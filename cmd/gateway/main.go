// Точка входа Gateway — тонкого HTTP-шлюза портала вакансий.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/arturkryukov/jobportal/gateway/internal/api/contract"
	"github.com/arturkryukov/jobportal/gateway/internal/api/handlers"
	"github.com/arturkryukov/jobportal/gateway/internal/api/middleware"
	"github.com/arturkryukov/jobportal/gateway/internal/authclient"
	"github.com/arturkryukov/jobportal/gateway/internal/config"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/notifyclient"
	"github.com/arturkryukov/jobportal/gateway/internal/scanclient"
	"github.com/arturkryukov/jobportal/gateway/internal/server"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/filestore"
	"github.com/arturkryukov/jobportal/gateway/internal/userclient"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Gateway запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("auth_url", cfg.AuthURL),
		slog.String("users_url", cfg.UsersURL),
		slog.String("notify_url", cfg.NotifyURL),
		slog.Bool("scan_enabled", cfg.ScanURL != ""),
	)

	// --- Инициализация компонентов ---

	// 1. OpenAPI-контракт: встроенный документ валидируется до принятия трафика
	apiContract, err := contract.Load(context.Background())
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Файловое хранилище резюме
	store, err := filestore.New(cfg.UploadsDir)
	if err != nil {
		logger.Error("Ошибка инициализации хранилища загрузок", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. HTTP-клиенты коллабораторов
	authClient := authclient.New(cfg.AuthURL, cfg.UpstreamTimeout, logger)
	userClient := userclient.New(cfg.UsersURL, cfg.UpstreamTimeout, logger)
	notifyClient := notifyclient.New(cfg.NotifyURL, cfg.UpstreamTimeout, logger)

	var scanner service.Scanner
	if cfg.ScanURL != "" {
		scanner = scanclient.New(cfg.ScanURL, cfg.UpstreamTimeout, logger)
	} else {
		logger.Warn("GW_SCAN_URL не задан, сканирование загрузок выключено")
	}

	// 4. Сервисы
	notifier := service.NewNotifier(notifyClient, config.ServiceName, cfg.NotifyTimeout, logger)
	accounts := service.NewAccounts(authClient, notifier, logger)
	profiles := service.NewProfiles(userClient, notifier, logger)
	uploads := service.NewUploads(store, scanner, notifier, cfg.AnonUploadTTL, logger)

	// 5. Фоновые процессы
	ctx := context.Background()

	// 5.1 Sweeper — очистка просроченных анонимных загрузок
	sweeper := service.NewSweeper(store, cfg.SweepInterval, logger)
	sweeper.Start(ctx)

	// 5.2 topologymetrics — мониторинг зависимостей
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     config.ServiceName,
		Group:         cfg.DephealthGroup,
		AuthURL:       cfg.AuthURL,
		UsersURL:      cfg.UsersURL,
		NotifyURL:     cfg.NotifyURL,
		ScanURL:       cfg.ScanURL,
		CheckInterval: cfg.DephealthCheckInterval,
		IsEntry:       cfg.DephealthIsEntry,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		}
	}

	// 6. Auth gate
	gate, err := middleware.NewAuthGate(cfg.JWTSecret, cfg.JWKSURL,
		cfg.JWKSRefreshInterval, cfg.JWTLeeway, logger)
	if err != nil {
		logger.Error("Ошибка инициализации auth gate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Handlers
	h := server.Handlers{
		System:  handlers.NewSystemHandler(cfg),
		Auth:    handlers.NewAuthHandler(accounts),
		Users:   handlers.NewUsersHandler(profiles),
		Jobs:    handlers.NewJobsHandler(notifier),
		Resumes: handlers.NewResumesHandler(uploads, store, cfg.MaxUploadSize),
	}

	// Стартовое уведомление
	notifier.Dispatch(model.NotificationEvent{
		Message: "Gateway is up and running",
		Status:  model.SeverityInfo,
	})

	// 8. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, gate, apiContract)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")

	sweeper.Stop()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	// Дренаж уведомлений в полёте
	notifier.Wait()

	logger.Info("Gateway остановлен")
}
