// profile.go — оркестрация проброса анкеты профиля в хранилище пользователей.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// MsgProfileFallback — текст ошибки, когда хранилище пользователей
// вернуло не-2xx без поля error в теле.
const MsgProfileFallback = "Profile submission failed."

// UserCaller — вызовы хранилища пользователей (userclient.Client).
type UserCaller interface {
	SubmitProfile(ctx context.Context, profile model.ProfileSubmission) (*model.UpstreamResult, error)
}

// Profiles — оркестратор проброса анкет профилей.
type Profiles struct {
	users    UserCaller
	notifier *Notifier
	logger   *slog.Logger
}

// NewProfiles создаёт оркестратор анкет.
func NewProfiles(users UserCaller, notifier *Notifier, logger *slog.Logger) *Profiles {
	return &Profiles{
		users:    users,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "profiles")),
	}
}

// Submit пробрасывает анкету в хранилище пользователей.
// Успешный ответ хранилища возвращается клиенту без изменений.
func (p *Profiles) Submit(ctx context.Context, profile model.ProfileSubmission) Outcome {
	result, err := p.users.SubmitProfile(ctx, profile)
	if err != nil {
		p.logger.Error("Хранилище пользователей недоступно",
			slog.String("email", profile.Email),
			slog.String("error", err.Error()),
		)
		p.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Profile submission error for user %s (%s).", profile.Name, profile.Email),
			Status:  model.SeverityError,
			Details: err.Error(),
		})
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgInternalError},
		}
	}

	if !result.Success() {
		p.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Profile submission error for user %s (%s).", profile.Name, profile.Email),
			Status:  model.SeverityError,
			Details: result.ErrorMessage(MsgProfileFallback),
		})
		return Outcome{
			Status: result.StatusCode,
			Body:   map[string]string{"error": result.ErrorMessage(MsgProfileFallback)},
		}
	}

	p.notifier.Dispatch(model.NotificationEvent{
		Message: fmt.Sprintf("Profile submission success for user %s (%s).", profile.Name, profile.Email),
		Status:  model.SeveritySuccess,
	})

	// Тело хранилища возвращаем как есть
	return Outcome{
		Status: http.StatusOK,
		Body:   result.Body,
	}
}
