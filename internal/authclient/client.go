// Пакет authclient — HTTP-клиент auth-сервиса.
// Операции: Signup (POST /api/auth/signup), Login (POST /api/auth/login).
// Учётные данные пробрасываются как есть — Gateway пароль не хэширует
// и не инспектирует; защита внутреннего канала — требование деплоя (TLS).
package authclient

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

// Client — HTTP-клиент auth-сервиса.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиента auth-сервиса.
// baseURL — базовый URL auth-сервиса (например, http://auth:3004).
// timeout — таймаут HTTP-запросов (из конфигурации GW_UPSTREAM_TIMEOUT).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// Пул idle-соединений для переиспользования
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "auth_client")),
	}
}

// Signup пробрасывает запрос регистрации в auth-сервис.
// Возвращает UpstreamResult с любым HTTP-статусом; error — только
// транспортная ошибка (сервис недоступен, таймаут).
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.UpstreamResult, error) {
	return c.postJSON(ctx, "/api/auth/signup", req)
}

// Login пробрасывает учётные данные входа в auth-сервис.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.UpstreamResult, error) {
	return c.postJSON(ctx, "/api/auth/login", req)
}

// postJSON выполняет POST с JSON-телом и возвращает статус и тело ответа как есть.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*model.UpstreamResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return nil, fmt.Errorf("запрос %s к auth-сервису: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа %s: %w", path, err)
	}

	c.logger.Debug("Ответ auth-сервиса",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return &model.UpstreamResult{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
