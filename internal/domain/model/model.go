// Пакет model — транзитные сущности Gateway.
// Gateway не хранит постоянного состояния: все сущности живут
// в пределах одного запроса (кроме sidecar-метаданных резюме).
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Identity — личность вызывающего, извлечённая из проверенного bearer-токена.
// Существует только в пределах одного запроса; nil — анонимный вызов
// (допустим на маршрутах с политикой optional).
type Identity struct {
	// Subject — sub из JWT (идентификатор пользователя в auth-сервисе).
	Subject string
	// Username — username из JWT.
	Username string
	// AccountType — accountType из JWT (например, applicant, employer).
	AccountType string
	// IssuedAt — iat из JWT.
	IssuedAt time.Time
	// ExpiresAt — exp из JWT.
	ExpiresAt time.Time
}

// Severity — уровень важности события уведомления.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// NotificationEvent — событие для сервиса уведомлений.
// Отправляется best-effort: исход доставки не влияет на основной ответ.
type NotificationEvent struct {
	// Message — человекочитаемое описание события.
	Message string `json:"message"`
	// Status — уровень важности (info, success, error).
	Status Severity `json:"status"`
	// Source — имя сервиса-отправителя. Заполняется Notifier'ом.
	Source string `json:"source"`
	// Timestamp — момент события. Заполняется Notifier'ом, если нулевой.
	Timestamp time.Time `json:"timestamp"`
	// Details — внутренние подробности (текст ошибки). Не попадают клиенту.
	Details string `json:"details,omitempty"`

	// Token — авторизационный контекст уведомления (bearer-токен).
	// Передаётся заголовком Authorization, в тело не сериализуется.
	Token string `json:"-"`
}

// UpstreamResult — результат одного вызова сервиса-коллаборатора.
// Транспортные ошибки (сервис недоступен, таймаут) сюда не попадают —
// они возвращаются как error из клиента.
type UpstreamResult struct {
	// StatusCode — HTTP-статус ответа коллаборатора.
	StatusCode int
	// Body — тело ответа как есть.
	Body json.RawMessage
}

// Success сообщает, вернул ли коллаборатор статус класса 2xx.
func (r *UpstreamResult) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorMessage извлекает поле error из структурированного тела ошибки.
// Если тело не разбирается или поле пустое — возвращает fallback.
func (r *UpstreamResult) ErrorMessage(fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}

// SignupRequest — тело запроса регистрации, пробрасывается в auth-сервис.
type SignupRequest struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
}

// LoginRequest — тело запроса входа, пробрасывается в auth-сервис.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileSubmission — анкета профиля, пробрасывается в хранилище пользователей.
// UserID — subject аутентифицированного вызывающего, добавляется Gateway.
type ProfileSubmission struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	ProfileSummary string   `json:"profile_summary,omitempty"`
	UserID         string   `json:"userId,omitempty"`
}

// NormalizeSkills приводит поле skills к срезу строк без пробелов по краям.
// Принимает два входных формата: JSON-массив строк или строка со значениями
// через запятую. Пустые элементы отбрасываются. nil и пустой ввод — nil.
func NormalizeSkills(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		return trimSkills(asArray), nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return trimSkills(strings.Split(asString, ",")), nil
	}

	return nil, fmt.Errorf("поле skills должно быть строкой или массивом строк")
}

// trimSkills убирает пробелы по краям и отбрасывает пустые элементы.
func trimSkills(items []string) []string {
	var result []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// ResumeAttr — метаданные загруженного резюме, хранятся в sidecar-файле
// *.attr.json рядом с самим файлом. Единственный источник истины для
// владельца и дедлайна удаления (переживает перезапуск процесса).
type ResumeAttr struct {
	// Owner — subject владельца; пустая строка — анонимная загрузка.
	Owner string `json:"owner"`
	// OriginalFilename — имя файла, присланное клиентом.
	OriginalFilename string `json:"original_filename"`
	// ContentType — MIME-тип из multipart part.
	ContentType string `json:"content_type"`
	// Size — размер файла в байтах.
	Size int64 `json:"size"`
	// UploadedAt — момент загрузки (UTC).
	UploadedAt time.Time `json:"uploaded_at"`
	// ExpiresAt — дедлайн удаления для анонимных загрузок; nil — бессрочно.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsExpired сообщает, истёк ли TTL резюме на момент now.
func (a *ResumeAttr) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// StoredResume — элемент листинга хранимых резюме.
type StoredResume struct {
	// Name — имя файла в хранилище.
	Name string `json:"name"`
	// Size — размер в байтах.
	Size int64 `json:"size"`
	// MimeType — MIME-тип, выведенный из расширения.
	MimeType string `json:"mimeType"`
	// ModifiedAt — время последней модификации.
	ModifiedAt time.Time `json:"modifiedAt"`
}
