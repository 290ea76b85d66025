// accounts.go — оркестрация регистрации и входа.
// Схема операции: ровно один вызов auth-сервиса → интерпретация
// результата → ровно одно уведомление независимо от исхода.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// Тексты ответов операций с учётными записями.
// Тексты — часть контракта API.
const (
	MsgAccountCreated  = "Account created successfully."
	MsgLoginSuccessful = "Login successful."
	MsgInternalError   = "Internal server error."
	// MsgSignupFallback — текст ошибки, когда auth-сервис вернул
	// не-2xx без поля error в теле.
	MsgSignupFallback = "Signup failed."
	MsgLoginFallback  = "Login failed."
)

// AuthCaller — вызовы auth-сервиса (authclient.Client).
type AuthCaller interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.UpstreamResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.UpstreamResult, error)
}

// Outcome — итог операции проброса: HTTP-статус и тело для клиента.
type Outcome struct {
	// Status — HTTP-статус ответа Gateway.
	Status int
	// Body — тело ответа (сериализуется handler'ом).
	Body any
}

// Accounts — оркестратор операций с учётными записями.
type Accounts struct {
	auth     AuthCaller
	notifier *Notifier
	logger   *slog.Logger
}

// NewAccounts создаёт оркестратор учётных записей.
func NewAccounts(auth AuthCaller, notifier *Notifier, logger *slog.Logger) *Accounts {
	return &Accounts{
		auth:     auth,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "accounts")),
	}
}

// Signup пробрасывает регистрацию в auth-сервис.
// Валидация полей — обязанность handler'а (сюда приходят полные данные).
func (a *Accounts) Signup(ctx context.Context, req model.SignupRequest) Outcome {
	result, err := a.auth.Signup(ctx, req)
	if err != nil {
		a.logger.Error("Auth-сервис недоступен при регистрации",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		a.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Signup failed for %s. Internal server error.", req.Email),
			Status:  model.SeverityError,
			Details: err.Error(),
		})
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgInternalError},
		}
	}

	if !result.Success() {
		a.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Signup failed for %s.", req.Email),
			Status:  model.SeverityError,
			Details: result.ErrorMessage(MsgSignupFallback),
		})
		return Outcome{
			Status: result.StatusCode,
			Body:   map[string]string{"error": result.ErrorMessage(MsgSignupFallback)},
		}
	}

	a.notifier.Dispatch(model.NotificationEvent{
		Message: fmt.Sprintf("Account created for %s (%s).", req.Username, req.Email),
		Status:  model.SeveritySuccess,
	})

	return Outcome{
		Status: http.StatusOK,
		Body: map[string]any{
			"message": MsgAccountCreated,
			"data":    result.Body,
		},
	}
}

// loginUpstreamBody — ожидаемая структура ответа auth-сервиса на вход.
type loginUpstreamBody struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login пробрасывает вход в auth-сервис.
// Ответ 200 обязан содержать token и user; их отсутствие — нарушение
// контракта auth-сервиса и отвечается как внутренняя ошибка.
// Токен из успешного входа становится авторизационным контекстом
// уведомления о входе.
func (a *Accounts) Login(ctx context.Context, req model.LoginRequest) Outcome {
	result, err := a.auth.Login(ctx, req)
	if err != nil {
		a.logger.Error("Auth-сервис недоступен при входе",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		a.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Login error for %s. Internal server error.", req.Email),
			Status:  model.SeverityError,
			Details: err.Error(),
		})
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgInternalError},
		}
	}

	if !result.Success() {
		a.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Login attempt failed for %s.", req.Email),
			Status:  model.SeverityError,
			Details: result.ErrorMessage(MsgLoginFallback),
		})
		return Outcome{
			Status: result.StatusCode,
			Body:   map[string]string{"error": result.ErrorMessage(MsgLoginFallback)},
		}
	}

	var upstream loginUpstreamBody
	if uerr := json.Unmarshal(result.Body, &upstream); uerr != nil || upstream.Token == "" || len(upstream.User) == 0 {
		a.logger.Error("Auth-сервис вернул 200 без token/user",
			slog.String("email", req.Email),
		)
		a.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Login error for %s. Internal server error.", req.Email),
			Status:  model.SeverityError,
			Details: "ответ auth-сервиса не содержит token/user",
		})
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgInternalError},
		}
	}

	username := usernameFromUser(upstream.User, req.Email)
	a.notifier.Dispatch(model.NotificationEvent{
		Message: fmt.Sprintf("User logged in: %s", username),
		Status:  model.SeveritySuccess,
		Token:   upstream.Token,
	})

	return Outcome{
		Status: http.StatusOK,
		Body: map[string]any{
			"message": MsgLoginSuccessful,
			"token":   upstream.Token,
			"user":    upstream.User,
		},
	}
}

// usernameFromUser извлекает username из объекта user ответа auth-сервиса.
// Если поля нет — используется email из запроса.
func usernameFromUser(user json.RawMessage, fallback string) string {
	var u struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(user, &u); err == nil && u.Username != "" {
		return u.Username
	}
	return fallback
}
