package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// testLogger — тихий логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockSender — мок транспорта уведомлений.
type mockSender struct {
	mu     sync.Mutex
	events []model.NotificationEvent
	err    error
}

func (m *mockSender) Send(_ context.Context, event model.NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockSender) Events() []model.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NotificationEvent(nil), m.events...)
}

// newTestNotifier создаёт Notifier с мок-транспортом.
func newTestNotifier(sender *mockSender) *service.Notifier {
	return service.NewNotifier(sender, "gateway", time.Second, testLogger())
}

// decodeBody разбирает JSON-тело ответа в map.
func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}
