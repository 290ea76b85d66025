// metrics.go — Prometheus HTTP метрики Gateway.
// Лейбл path заполняется шаблоном маршрута chi, а не фактическим путём:
// сырые пути (имена файлов, опечатки, сканеры) дали бы неограниченную
// кардинальность.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики Gateway
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gw_http_requests_total",
			Help: "Общее количество HTTP-запросов к Gateway",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gw_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Gateway в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого маршрута.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			path := routeLabel(r)
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// unroutedLabel — значение лейбла path для запросов мимо таблицы маршрутов.
const unroutedLabel = "unrouted"

// routeLabel возвращает шаблон маршрута chi ("/resumes/{filename}")
// вместо фактического пути запроса. Вызывается после обработки:
// шаблон известен только после роутинга. Запросы, не попавшие ни
// в один маршрут, схлопываются в unroutedLabel.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unroutedLabel
}
