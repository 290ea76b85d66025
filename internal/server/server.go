// Пакет server — HTTP-сервер Gateway с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/jobportal/gateway/internal/api/contract"
	"github.com/arturkryukov/jobportal/gateway/internal/api/handlers"
	"github.com/arturkryukov/jobportal/gateway/internal/api/middleware"
	"github.com/arturkryukov/jobportal/gateway/internal/config"
)

// Handlers — набор обработчиков, монтируемых в таблицу маршрутов.
type Handlers struct {
	System  *handlers.SystemHandler
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Jobs    *handlers.JobsHandler
	Resumes *handlers.ResumesHandler
}

// Server — HTTP-сервер Gateway.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// gate определяет политику аутентификации маршрута: required —
// валидный токен обязателен, optional — токен принимается при наличии,
// открытые маршруты монтируются без auth middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, gate *middleware.AuthGate, apiContract *contract.Contract) *Server {
	router := NewRouter(logger, h, gate, apiContract)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает таблицу маршрутов Gateway.
// Вынесен из New для использования в тестах через httptest.
func NewRouter(logger *slog.Logger, h Handlers, gate *middleware.AuthGate, apiContract *contract.Contract) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Открытые маршруты
	router.Get("/api/status", h.System.Status)
	router.Get("/api/health", h.System.Health)
	router.Get("/api/constants", h.System.Constants)
	router.Get("/metrics", h.System.GetMetrics)
	if apiContract != nil {
		router.Get("/api/openapi.json", apiContract.ServeJSON)
	}

	router.Post("/api/auth/signup", h.Auth.Signup)
	router.Post("/api/auth/login", h.Auth.Login)

	router.Get("/resumes", h.Resumes.List)

	// Маршруты с обязательной аутентификацией
	router.Group(func(r chi.Router) {
		r.Use(gate.Require())

		r.Post("/api/users", h.Users.SubmitProfile)
		r.Post("/api/receive-jobs", h.Jobs.ReceiveJobs)
		r.Post("/api/notify", h.Jobs.Notify)
		r.Delete("/resumes/{filename}", h.Resumes.Delete)
	})

	// Маршруты с опциональной аутентификацией
	router.Group(func(r chi.Router) {
		r.Use(gate.Optional())

		r.Post("/upload", h.Resumes.Upload)
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
