// Пакет scanclient — HTTP-клиент сервиса сканирования загрузок.
// Операция: Scan (POST /api/scan) — валидация содержимого файла
// по пути на общем томе и метаданным.
package scanclient

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
)

// ScanMetadata — метаданные файла, передаваемые сканеру.
type ScanMetadata struct {
	OriginalFilename string `json:"originalFilename"`
	ContentType      string `json:"contentType"`
	Size             int64  `json:"size"`
	Owner            string `json:"owner,omitempty"`
}

// ScanResult — вердикт сканера.
type ScanResult struct {
	// Success — файл прошёл валидацию.
	Success bool `json:"success"`
	// Details — подробности отказа (передаются клиенту при 400).
	Details string `json:"details,omitempty"`
}

// scanRequest — тело запроса к сканеру.
type scanRequest struct {
	FilePath string       `json:"filePath"`
	Metadata ScanMetadata `json:"metadata"`
}

// Client — HTTP-клиент сервиса сканирования.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиента сервиса сканирования.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "scan_client")),
	}
}

// Scan передаёт файл на валидацию сканеру.
// Транспортная ошибка возвращается как error; ответ сканера с любым
// статусом разбирается в ScanResult (не-2xx трактуется как отказ).
func (c *Client) Scan(ctx context.Context, filePath string, meta ScanMetadata) (*ScanResult, error) {
	body, err := json.Marshal(scanRequest{FilePath: filePath, Metadata: meta})
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса Scan: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/scan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса Scan: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return nil, fmt.Errorf("запрос Scan к сканеру: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа Scan: %w", err)
	}

	var result ScanResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Невалидный JSON от сканера — трактуем как отказ без подробностей
		c.logger.Warn("Сканер вернул невалидный JSON",
			slog.Int("status", resp.StatusCode),
		)
		return &ScanResult{Success: false}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Success = false
	}

	return &result, nil
}
