// notify.go — рассыльщик уведомлений best-effort.
// Каждая операция Gateway порождает ровно одно событие; исход доставки
// никогда не влияет на уже вычисленный ответ клиенту. Отправка идёт
// в отдельной goroutine с собственным контекстом, чтобы обрыв
// клиентского соединения её не отменял.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// Метрики рассыльщика
var (
	// notificationsTotal — количество уведомлений по исходу доставки.
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gw_notifications_total",
			Help: "Количество отправленных уведомлений по исходу доставки",
		},
		[]string{"outcome"},
	)
)

// NotifySender — транспорт доставки событий (notifyclient.Client).
type NotifySender interface {
	Send(ctx context.Context, event model.NotificationEvent) error
}

// Notifier — рассыльщик уведомлений.
type Notifier struct {
	sender NotifySender
	logger *slog.Logger
	// source — имя сервиса-отправителя в событиях
	source string
	// timeout — таймаут доставки одного события
	timeout time.Duration
	// wg — учёт отправок в полёте для дренажа при shutdown и в тестах
	wg sync.WaitGroup
}

// NewNotifier создаёт рассыльщик уведомлений.
func NewNotifier(sender NotifySender, source string, timeout time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		logger:  logger.With(slog.String("component", "notifier")),
		source:  source,
		timeout: timeout,
	}
}

// Dispatch отправляет событие best-effort в отдельной goroutine.
// Заполняет source и timestamp, если они пустые. Ошибка доставки
// логируется и учитывается в метриках, но никогда не возвращается.
func (n *Notifier) Dispatch(event model.NotificationEvent) {
	if event.Source == "" {
		event.Source = n.source
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Собственный контекст: обрыв клиентского запроса отправку не отменяет
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sender.Send(ctx, event); err != nil {
			notificationsTotal.WithLabelValues("error").Inc()
			n.logger.Warn("Уведомление не доставлено",
				slog.String("message", event.Message),
				slog.String("status", string(event.Status)),
				slog.String("error", err.Error()),
			)
			return
		}

		notificationsTotal.WithLabelValues("success").Inc()
	}()
}

// SendDirect отправляет событие синхронно и возвращает результат доставки.
// Используется операцией ручной отправки уведомления, где доставка —
// основной вызов, а не побочный эффект.
func (n *Notifier) SendDirect(ctx context.Context, event model.NotificationEvent) error {
	if event.Source == "" {
		event.Source = n.source
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	err := n.sender.Send(ctx, event)
	if err != nil {
		notificationsTotal.WithLabelValues("error").Inc()
		return err
	}
	notificationsTotal.WithLabelValues("success").Inc()
	return nil
}

// Wait дожидается завершения всех отправок в полёте.
// Вызывается при graceful shutdown и в тестах.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
