// requestid.go — middleware присвоения идентификатора запроса.
// ID берётся из входящего заголовка X-Request-Id или генерируется (UUID),
// помещается в контекст и возвращается клиенту тем же заголовком.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKeyRequestID — идентификатор запроса в контексте.
const ContextKeyRequestID contextKey = "request_id"

// headerRequestID — заголовок передачи идентификатора запроса.
const headerRequestID = "X-Request-Id"

// RequestID возвращает middleware, присваивающий каждому запросу
// уникальный идентификатор.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(headerRequestID, id)
			ctx := context.WithValue(r.Context(), ContextKeyRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext извлекает идентификатор запроса из контекста.
// Возвращает пустую строку, если идентификатор не присвоен.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
