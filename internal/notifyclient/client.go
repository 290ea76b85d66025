// Пакет notifyclient — HTTP-клиент сервиса уведомлений.
// Операция: Send (POST /api/notifications). Клиент только доставляет
// событие; политика best-effort (проглатывание ошибок) реализуется
// выше, в service.Notifier.
package notifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// Client — HTTP-клиент сервиса уведомлений.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиента сервиса уведомлений.
// baseURL — базовый URL сервиса (например, http://notify:3006).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "notify_client")),
	}
}

// Send отправляет событие в сервис уведомлений.
// Если у события есть Token — он передаётся заголовком Authorization,
// чтобы сервис уведомлений мог атрибутировать событие.
// Ответ с не-2xx статусом считается ошибкой доставки.
func (c *Client) Send(ctx context.Context, event model.NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("сериализация события: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notifications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса Send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.Token != "" {
		req.Header.Set("Authorization", "Bearer "+event.Token)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return fmt.Errorf("запрос Send к сервису уведомлений: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("сервис уведомлений вернул статус %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Debug("Уведомление доставлено",
		slog.String("status", string(event.Status)),
	)

	return nil
}
