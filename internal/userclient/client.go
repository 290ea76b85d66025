// Пакет userclient — HTTP-клиент хранилища пользователей.
// Операция: SubmitProfile (POST /api/users) — сохранение анкеты профиля.
package userclient

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

// Client — HTTP-клиент хранилища пользователей.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиента хранилища пользователей.
// baseURL — базовый URL хранилища (например, http://users:3002).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "user_client")),
	}
}

// SubmitProfile пробрасывает анкету профиля в хранилище пользователей.
// Возвращает UpstreamResult с любым HTTP-статусом; error — только
// транспортная ошибка.
func (c *Client) SubmitProfile(ctx context.Context, profile model.ProfileSubmission) (*model.UpstreamResult, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("сериализация анкеты: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса SubmitProfile: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return nil, fmt.Errorf("запрос SubmitProfile к хранилищу пользователей: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа SubmitProfile: %w", err)
	}

	c.logger.Debug("Ответ хранилища пользователей",
		slog.Int("status", resp.StatusCode),
	)

	return &model.UpstreamResult{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
