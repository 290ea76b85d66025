package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arturkryukov/jobportal/gateway/internal/authclient"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
)

// newAuthUpstream поднимает httptest-сервер auth-сервиса с учётом вызовов.
func newAuthUpstream(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestAuthHandler(t *testing.T, upstream *httptest.Server) (*AuthHandler, *service.Notifier) {
	t.Helper()
	client := authclient.New(upstream.URL, time.Second, testLogger())
	notifier := newTestNotifier(&mockSender{})
	accounts := service.NewAccounts(client, notifier, testLogger())
	return NewAuthHandler(accounts), notifier
}

func TestSignup_MissingFields_NoUpstreamCall(t *testing.T) {
	upstream, calls := newAuthUpstream(t, http.StatusOK, `{}`)
	handler, _ := newTestAuthHandler(t, upstream)

	bodies := []string{
		`{}`,
		`{"username":"ivan"}`,
		`{"username":"ivan","name":"Ivan","email":"i@e.com","password":"secret1"}`,
	}

	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Signup(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("тело %s: ожидалось 400, получено %d", body, rec.Code)
		}
		if got := decodeBody(rec)["error"]; got != MsgAllFieldsRequired {
			t.Errorf("error: ожидалось %q, получено %v", MsgAllFieldsRequired, got)
		}
	}

	// Ни один невалидный запрос не дошёл до auth-сервиса
	if calls.Load() != 0 {
		t.Errorf("вызовов upstream: ожидалось 0, получено %d", calls.Load())
	}
}

func TestSignup_Success(t *testing.T) {
	upstream, calls := newAuthUpstream(t, http.StatusCreated, `{"id":"u-1","username":"ivan"}`)
	handler, notifier := newTestAuthHandler(t, upstream)

	body := `{"username":"ivan","name":"Ivan","email":"ivan@example.com","password":"secret1","accountType":"jobseeker"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)
	notifier.Wait()

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(rec)
	if resp["message"] != service.MsgAccountCreated {
		t.Errorf("message: ожидалось %q, получено %v", service.MsgAccountCreated, resp["message"])
	}
	// Тело auth-сервиса проброшено в data
	data := resp["data"].(map[string]any)
	if data["id"] != "u-1" {
		t.Errorf("data.id: получено %v", data["id"])
	}
	if calls.Load() != 1 {
		t.Errorf("вызовов upstream: ожидалось 1, получено %d", calls.Load())
	}
}

func TestSignup_InvalidJSON(t *testing.T) {
	upstream, calls := newAuthUpstream(t, http.StatusOK, `{}`)
	handler, _ := newTestAuthHandler(t, upstream)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус: ожидалось 400, получено %d", rec.Code)
	}
	if calls.Load() != 0 {
		t.Errorf("невалидный JSON не должен доходить до upstream")
	}
}

func TestLogin_LocalValidation_NoUpstreamCall(t *testing.T) {
	upstream, calls := newAuthUpstream(t, http.StatusOK, `{}`)
	handler, _ := newTestAuthHandler(t, upstream)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"пустой email", `{"password":"secret1"}`, MsgInvalidEmail},
		{"email без @", `{"email":"not-an-email","password":"secret1"}`, MsgInvalidEmail},
		{"email без домена", `{"email":"ivan@","password":"secret1"}`, MsgInvalidEmail},
		{"короткий пароль", `{"email":"ivan@example.com","password":"12345"}`, MsgPasswordTooShort},
		{"пустой пароль", `{"email":"ivan@example.com"}`, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("статус: ожидалось 400, получено %d", rec.Code)
			}
			if got := decodeBody(rec)["error"]; got != tt.wantMsg {
				t.Errorf("error: ожидалось %q, получено %v", tt.wantMsg, got)
			}
		})
	}

	if calls.Load() != 0 {
		t.Errorf("локальная валидация: вызовов upstream ожидалось 0, получено %d", calls.Load())
	}
}

func TestLogin_Success(t *testing.T) {
	upstream, _ := newAuthUpstream(t, http.StatusOK,
		`{"token":"jwt-abc","user":{"username":"ivan","email":"ivan@example.com"}}`)
	handler, notifier := newTestAuthHandler(t, upstream)

	body := `{"email":"ivan@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	notifier.Wait()

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(rec)
	if resp["message"] != service.MsgLoginSuccessful {
		t.Errorf("message: ожидалось %q, получено %v", service.MsgLoginSuccessful, resp["message"])
	}
	if resp["token"] != "jwt-abc" {
		t.Errorf("token: получено %v", resp["token"])
	}
	user := resp["user"].(map[string]any)
	if user["username"] != "ivan" {
		t.Errorf("user.username: получено %v", user["username"])
	}
}

func TestLogin_UpstreamRejection_Propagated(t *testing.T) {
	upstream, _ := newAuthUpstream(t, http.StatusUnauthorized, `{"error":"Invalid credentials."}`)
	handler, notifier := newTestAuthHandler(t, upstream)

	body := `{"email":"ivan@example.com","password":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	notifier.Wait()

	// Статус и сообщение коллаборатора пробрасываются как есть
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("статус: ожидалось 401, получено %d", rec.Code)
	}
	if got := decodeBody(rec)["error"]; got != "Invalid credentials." {
		t.Errorf("error: получено %v", got)
	}
}

func TestLogin_Malformed200_InternalError(t *testing.T) {
	// 200 без token/user — нарушение контракта auth-сервиса
	upstream, _ := newAuthUpstream(t, http.StatusOK, `{"something":"else"}`)
	handler, notifier := newTestAuthHandler(t, upstream)

	body := `{"email":"ivan@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	notifier.Wait()

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус: ожидалось 500, получено %d", rec.Code)
	}
	if got := decodeBody(rec)["error"]; got != service.MsgInternalError {
		t.Errorf("клиент получает общее сообщение, получено %v", got)
	}
}
