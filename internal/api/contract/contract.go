// Пакет contract — встроенный OpenAPI-контракт Gateway.
// Документ валидируется при старте: расхождение спецификации
// с самой собой роняет процесс до принятия трафика.
// Контракт отдаётся клиентам на GET /api/openapi.json.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Contract — загруженный и провалидированный OpenAPI-документ.
type Contract struct {
	doc *openapi3.T
	// jsonBody — сериализованный документ для отдачи клиентам
	jsonBody []byte
}

// Load разбирает и валидирует встроенный OpenAPI-документ.
func Load(ctx context.Context) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("разбор OpenAPI-документа: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("валидация OpenAPI-документа: %w", err)
	}

	jsonBody, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("сериализация OpenAPI-документа: %w", err)
	}

	return &Contract{doc: doc, jsonBody: jsonBody}, nil
}

// Doc возвращает разобранный документ.
func (c *Contract) Doc() *openapi3.T {
	return c.doc
}

// ServeJSON — обработчик GET /api/openapi.json.
func (c *Contract) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.jsonBody)
}
