// system.go — служебные endpoints Gateway.
// /api/status — статус процесса и версия
// /api/health — health probe
// /api/constants — публичная конфигурация для браузерного клиента
// /metrics — Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arturkryukov/jobportal/gateway/internal/config"
)

// SystemHandler — обработчик служебных endpoints.
type SystemHandler struct {
	cfg         *config.Config
	promHandler http.Handler
}

// NewSystemHandler создаёт обработчик служебных endpoints.
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{
		cfg:         cfg,
		promHandler: promhttp.Handler(),
	}
}

// statusResponse — ответ /api/status.
type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Message string `json:"message"`
}

// healthResponse — ответ /api/health.
type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// constantsResponse — публичная конфигурация для браузерного клиента.
// Секреты и внутренние таймауты сюда не попадают.
type constantsResponse struct {
	AuthServiceURL   string `json:"authServiceUrl"`
	UserServiceURL   string `json:"userServiceUrl"`
	NotifyServiceURL string `json:"notifyServiceUrl"`
	MaxUploadSize    int64  `json:"maxUploadSize"`
	AllowedFileTypes string `json:"allowedFileTypes"`
}

// Status — статус процесса.
func (h *SystemHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "active",
		Version: config.Version,
		Message: "Gateway is running",
	})
}

// Health — health probe. Gateway не хранит состояния, поэтому
// живой процесс означает здоровый сервис.
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Message:   "Gateway service is operational",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   config.ServiceName,
	})
}

// Constants — публичная конфигурация для браузерного клиента.
func (h *SystemHandler) Constants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, constantsResponse{
		AuthServiceURL:   h.cfg.AuthURL,
		UserServiceURL:   h.cfg.UsersURL,
		NotifyServiceURL: h.cfg.NotifyURL,
		MaxUploadSize:    h.cfg.MaxUploadSize,
		AllowedFileTypes: ".pdf,.doc,.docx",
	})
}

// GetMetrics — Prometheus метрики.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
