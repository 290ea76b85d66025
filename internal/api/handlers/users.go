// users.go — обработчик проброса анкеты профиля.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/arturkryukov/jobportal/gateway/internal/api/errors"
	"github.com/arturkryukov/jobportal/gateway/internal/api/middleware"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// UsersHandler — обработчик анкет профилей.
type UsersHandler struct {
	profiles *service.Profiles
}

// NewUsersHandler создаёт обработчик анкет.
func NewUsersHandler(profiles *service.Profiles) *UsersHandler {
	return &UsersHandler{profiles: profiles}
}

// profileRequest — тело запроса анкеты. Skills принимается в двух
// форматах: массив строк или строка со значениями через запятую.
type profileRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Location       string          `json:"location"`
	Skills         json.RawMessage `json:"skills"`
	ProfileSummary string          `json:"profile_summary"`
}

// SubmitProfile — проброс анкеты профиля в хранилище пользователей.
// POST /api/users (auth required)
func (h *UsersHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, MsgInvalidBody)
		return
	}

	if req.Name == "" || req.Email == "" || req.Phone == "" ||
		req.Address == "" || req.Location == "" {
		apierrors.ValidationError(w, MsgAllFieldsRequired)
		return
	}

	skills, err := model.NormalizeSkills(req.Skills)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	submission := model.ProfileSubmission{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Location:       req.Location,
		Skills:         skills,
		ProfileSummary: req.ProfileSummary,
	}

	// Subject аутентифицированного вызывающего становится userId анкеты
	if identity := middleware.IdentityFromContext(r.Context()); identity != nil {
		submission.UserID = identity.Subject
	}

	writeOutcome(w, h.profiles.Submit(r.Context(), submission))
}
