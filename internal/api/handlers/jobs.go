// jobs.go — обработчики приёма данных вакансий и ручной отправки уведомлений.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	apierrors "github.com/arturkryukov/jobportal/gateway/internal/api/errors"
	"github.com/arturkryukov/jobportal/gateway/internal/api/middleware"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// Тексты ответов операций с вакансиями и уведомлениями.
const (
	MsgJobDataReceived  = "Job data received successfully"
	MsgMessageRequired  = "Message is required."
	MsgNotificationSent = "Notification sent successfully."
	MsgNotificationFail = "Failed to send notification."
	MsgInvalidJSON      = "Invalid JSON payload."
)

// JobsHandler — обработчики вакансий и уведомлений.
type JobsHandler struct {
	notifier *service.Notifier
}

// NewJobsHandler создаёт обработчик вакансий.
func NewJobsHandler(notifier *service.Notifier) *JobsHandler {
	return &JobsHandler{notifier: notifier}
}

// ReceiveJobs — приём произвольных данных вакансий.
// Данные подтверждаются эхом; единственный побочный эффект —
// info-уведомление.
// POST /api/receive-jobs (auth required)
func (h *JobsHandler) ReceiveJobs(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 || !json.Valid(body) {
		apierrors.ValidationError(w, MsgInvalidJSON)
		return
	}

	h.notifier.Dispatch(model.NotificationEvent{
		Message: "Received job data successfully.",
		Status:  model.SeverityInfo,
		Token:   middleware.TokenFromRequest(r),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": MsgJobDataReceived,
		"data":    json.RawMessage(body),
	})
}

// notifyRequest — тело запроса ручной отправки уведомления.
type notifyRequest struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Details string `json:"details"`
}

// Notify — ручная отправка уведомления.
// Здесь доставка — основной вызов операции (не best-effort):
// её исход определяет ответ клиенту.
// POST /api/notify (auth required)
func (h *JobsHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, MsgInvalidBody)
		return
	}

	if req.Message == "" {
		apierrors.ValidationError(w, MsgMessageRequired)
		return
	}

	status := model.Severity(req.Status)
	if status != model.SeveritySuccess && status != model.SeverityError {
		status = model.SeverityInfo
	}

	event := model.NotificationEvent{
		Message: req.Message,
		Status:  status,
		Details: req.Details,
		Token:   middleware.TokenFromRequest(r),
	}

	if err := h.notifier.SendDirect(r.Context(), event); err != nil {
		apierrors.InternalError(w, MsgNotificationFail)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": MsgNotificationSent})
}
