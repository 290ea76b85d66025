// Пакет errors — конструкторы стандартных ошибок Gateway.
// Единый плоский формат: {"error": "<человекочитаемое сообщение>"}.
// Stack traces и внутренние URL в тело никогда не попадают.
package errors //nolint:revive // имя пакета закреплено контрактом API

import (
	"encoding/json"
	"net/http"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error string `json:"error"`
}

// WriteError записывает ответ ошибки в стандартном формате Gateway.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные (upstream-вызов не делается).
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// Unauthorized — 401 учётные данные отсутствуют.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// Forbidden — 403 учётные данные невалидны или просрочены.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// UpstreamError — проброс статуса и сообщения об ошибке коллаборатора.
func UpstreamError(w http.ResponseWriter, statusCode int, message string) {
	WriteError(w, statusCode, message)
}

// InternalError — 500 внутренняя ошибка, детали остаются в логах.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
