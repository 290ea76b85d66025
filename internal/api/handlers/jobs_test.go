package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReceiveJobs_EchoesPayload(t *testing.T) {
	sender := &mockSender{}
	handler := NewJobsHandler(newTestNotifier(sender))

	body := `{"jobs":[{"title":"Go developer"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/receive-jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ReceiveJobs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d", rec.Code)
	}
	resp := decodeBody(rec)
	if resp["message"] != MsgJobDataReceived {
		t.Errorf("message: ожидалось %q, получено %v", MsgJobDataReceived, resp["message"])
	}
	// Данные возвращаются эхом
	data := resp["data"].(map[string]any)
	if _, ok := data["jobs"]; !ok {
		t.Errorf("data должна содержать исходный payload, получено %v", data)
	}
}

func TestReceiveJobs_InvalidJSON(t *testing.T) {
	sender := &mockSender{}
	handler := NewJobsHandler(newTestNotifier(sender))

	req := httptest.NewRequest(http.MethodPost, "/api/receive-jobs", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	handler.ReceiveJobs(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус: ожидалось 400, получено %d", rec.Code)
	}
	if len(sender.Events()) != 0 {
		t.Error("невалидный payload не должен порождать уведомлений")
	}
}

func TestReceiveJobs_OneNotification(t *testing.T) {
	sender := &mockSender{}
	notifier := newTestNotifier(sender)
	handler := NewJobsHandler(notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/receive-jobs", strings.NewReader(`{"k":"v"}`))
	rec := httptest.NewRecorder()
	handler.ReceiveJobs(rec, req)
	notifier.Wait()

	events := sender.Events()
	if len(events) != 1 {
		t.Fatalf("уведомлений: ожидалось 1, получено %d", len(events))
	}
	if events[0].Message != "Received job data successfully." {
		t.Errorf("неожиданный текст уведомления: %q", events[0].Message)
	}
}

func TestNotify_MessageRequired(t *testing.T) {
	sender := &mockSender{}
	handler := NewJobsHandler(newTestNotifier(sender))

	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(`{"status":"info"}`))
	rec := httptest.NewRecorder()
	handler.Notify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус: ожидалось 400, получено %d", rec.Code)
	}
	if got := decodeBody(rec)["error"]; got != MsgMessageRequired {
		t.Errorf("error: ожидалось %q, получено %v", MsgMessageRequired, got)
	}
	if len(sender.Events()) != 0 {
		t.Error("без message отправки быть не должно")
	}
}

func TestNotify_Success(t *testing.T) {
	sender := &mockSender{}
	handler := NewJobsHandler(newTestNotifier(sender))

	body := `{"message":"Deployment finished","status":"success"}`
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Notify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d", rec.Code)
	}
	if got := decodeBody(rec)["message"]; got != MsgNotificationSent {
		t.Errorf("message: ожидалось %q, получено %v", MsgNotificationSent, got)
	}

	events := sender.Events()
	if len(events) != 1 || events[0].Message != "Deployment finished" {
		t.Fatalf("неожиданные события: %+v", events)
	}
	if events[0].Status != "success" {
		t.Errorf("status: ожидалось success, получено %s", events[0].Status)
	}
}

func TestNotify_UnknownStatusDefaultsToInfo(t *testing.T) {
	sender := &mockSender{}
	handler := NewJobsHandler(newTestNotifier(sender))

	body := `{"message":"event","status":"critical"}`
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Notify(rec, req)

	events := sender.Events()
	if len(events) != 1 || events[0].Status != "info" {
		t.Fatalf("неизвестный статус должен превращаться в info, получено %+v", events)
	}
}

func TestNotify_DeliveryFailure(t *testing.T) {
	// Здесь доставка — основной вызов операции: ошибка видна клиенту
	sender := &mockSender{err: errors.New("notification service down")}
	handler := NewJobsHandler(newTestNotifier(sender))

	body := `{"message":"doomed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Notify(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус: ожидалось 500, получено %d", rec.Code)
	}
	if got := decodeBody(rec)["error"]; got != MsgNotificationFail {
		t.Errorf("error: ожидалось %q, получено %v", MsgNotificationFail, got)
	}
}
