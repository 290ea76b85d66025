// Пакет handlers — HTTP-обработчики Gateway.
// Обработчики отвечают за разбор и валидацию входа; оркестрация
// upstream-вызовов и уведомлений живёт в internal/service.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOutcome записывает итог операции оркестратора.
func writeOutcome(w http.ResponseWriter, outcome service.Outcome) {
	writeJSON(w, outcome.Status, outcome.Body)
}
