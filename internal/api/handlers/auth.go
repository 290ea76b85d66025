// auth.go — обработчики регистрации и входа.
// Валидация входа выполняется до любого upstream-вызова: запрос
// с неполными данными не покидает Gateway.
package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	apierrors "github.com/arturkryukov/jobportal/gateway/internal/api/errors"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// Тексты ошибок валидации. Тексты — часть контракта API.
const (
	MsgAllFieldsRequired = "All fields are required."
	MsgInvalidEmail      = "A valid email address is required."
	MsgPasswordTooShort  = "Password must be at least 6 characters."
	MsgInvalidBody       = "Invalid request body."
)

// emailPattern — базовая проверка формата email.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler — обработчики операций с учётными записями.
type AuthHandler struct {
	accounts *service.Accounts
}

// NewAuthHandler создаёт обработчик учётных записей.
func NewAuthHandler(accounts *service.Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Signup — регистрация учётной записи.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, MsgInvalidBody)
		return
	}

	if req.Username == "" || req.Name == "" || req.Email == "" ||
		req.Password == "" || req.AccountType == "" {
		apierrors.ValidationError(w, MsgAllFieldsRequired)
		return
	}

	writeOutcome(w, h.accounts.Signup(r.Context(), req))
}

// Login — вход в учётную запись.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, MsgInvalidBody)
		return
	}

	if !emailPattern.MatchString(req.Email) {
		apierrors.ValidationError(w, MsgInvalidEmail)
		return
	}
	if len(req.Password) < 6 {
		apierrors.ValidationError(w, MsgPasswordTooShort)
		return
	}

	writeOutcome(w, h.accounts.Login(r.Context(), req))
}
