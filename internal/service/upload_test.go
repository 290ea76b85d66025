package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arturkryukov/jobportal/gateway/internal/scanclient"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/attr"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/filestore"
)

// mockScanner — мок сервиса сканирования.
type mockScanner struct {
	result *scanclient.ScanResult
	err    error
	calls  int
}

func (m *mockScanner) Scan(_ context.Context, _ string, _ scanclient.ScanMetadata) (*scanclient.ScanResult, error) {
	m.calls++
	return m.result, m.err
}

func newTestUploads(t *testing.T, scanner Scanner) (*Uploads, *filestore.FileStore, *mockSender) {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}

	sender := &mockSender{}
	notifier := NewNotifier(sender, "gateway", time.Second, testLogger())
	uploads := NewUploads(store, scanner, notifier, time.Hour, testLogger())
	return uploads, store, sender
}

// dataFiles возвращает имена файлов данных в директории (без sidecar).
func dataFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	var names []string
	for _, e := range entries {
		if !attr.IsAttrFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestUploads_AnonymousUpload_SetsTTL(t *testing.T) {
	uploads, store, _ := newTestUploads(t, nil)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("%PDF-1.4 test"), "resume.pdf", "application/pdf", "")

	if outcome.Status != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d: %+v", outcome.Status, outcome.Body)
	}

	files := dataFiles(t, store.UploadsDir())
	if len(files) != 1 {
		t.Fatalf("файлов: ожидалось 1, получено %d", len(files))
	}

	// Имя начинается с anonymous_
	if !strings.HasPrefix(files[0], "anonymous_") {
		t.Errorf("имя анонимной загрузки должно начинаться с anonymous_: %s", files[0])
	}

	// Sidecar содержит дедлайн удаления
	a, err := attr.Read(filepath.Join(store.UploadsDir(), files[0]))
	if err != nil {
		t.Fatalf("ошибка чтения sidecar: %v", err)
	}
	if a.ExpiresAt == nil {
		t.Fatal("у анонимной загрузки должен быть expires_at")
	}
	if a.Owner != "" {
		t.Errorf("owner анонимной загрузки должен быть пустым, получено %q", a.Owner)
	}
}

func TestUploads_OwnedUpload_NoTTL(t *testing.T) {
	uploads, store, _ := newTestUploads(t, nil)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("%PDF-1.4 test"), "resume.pdf", "application/pdf", "user-42")

	if outcome.Status != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d", outcome.Status)
	}

	files := dataFiles(t, store.UploadsDir())
	if len(files) != 1 {
		t.Fatalf("файлов: ожидалось 1, получено %d", len(files))
	}

	a, err := attr.Read(filepath.Join(store.UploadsDir(), files[0]))
	if err != nil {
		t.Fatalf("ошибка чтения sidecar: %v", err)
	}
	if a.ExpiresAt != nil {
		t.Error("у загрузки владельца не должно быть expires_at")
	}
	if a.Owner != "user-42" {
		t.Errorf("owner: ожидалось user-42, получено %q", a.Owner)
	}
}

func TestUploads_UnsupportedType_NothingPersists(t *testing.T) {
	uploads, store, _ := newTestUploads(t, nil)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("MZ..."), "virus.exe", "application/x-msdownload", "")

	if outcome.Status != http.StatusBadRequest {
		t.Fatalf("статус: ожидалось 400, получено %d", outcome.Status)
	}
	body := outcome.Body.(map[string]string)
	if body["error"] != MsgUnsupportedType {
		t.Errorf("error: ожидалось %q, получено %q", MsgUnsupportedType, body["error"])
	}

	if files := dataFiles(t, store.UploadsDir()); len(files) != 0 {
		t.Errorf("на диске не должно остаться файлов, найдено %v", files)
	}
}

func TestUploads_MimeFallbackFromExtension(t *testing.T) {
	// Part без Content-Type: тип выводится из расширения
	uploads, _, _ := newTestUploads(t, nil)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("doc content"), "resume.docx", "", "user-1")

	if outcome.Status != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d: %+v", outcome.Status, outcome.Body)
	}
}

func TestUploads_ScanRejection_CleansUp(t *testing.T) {
	scanner := &mockScanner{result: &scanclient.ScanResult{Success: false, Details: "Macro detected."}}
	uploads, store, sender := newTestUploads(t, scanner)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("%PDF-1.4 bad"), "resume.pdf", "application/pdf", "user-1")
	uploads.notifier.Wait()

	if outcome.Status != http.StatusBadRequest {
		t.Fatalf("статус: ожидалось 400, получено %d", outcome.Status)
	}
	body := outcome.Body.(map[string]string)
	if body["error"] != "Macro detected." {
		t.Errorf("error: ожидались детали сканера, получено %q", body["error"])
	}

	// Отклонённый файл и sidecar удалены
	entries, _ := os.ReadDir(store.UploadsDir())
	if len(entries) != 0 {
		t.Errorf("директория должна быть пустой, найдено %d файлов", len(entries))
	}

	events := sender.Events()
	if len(events) != 1 || events[0].Status != "error" {
		t.Fatalf("ожидалось одно error-уведомление, получено %+v", events)
	}
}

func TestUploads_ScanTransportError_CleansUp(t *testing.T) {
	scanner := &mockScanner{err: context.DeadlineExceeded}
	uploads, store, _ := newTestUploads(t, scanner)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("%PDF-1.4"), "resume.pdf", "application/pdf", "")

	if outcome.Status != http.StatusInternalServerError {
		t.Fatalf("статус: ожидалось 500, получено %d", outcome.Status)
	}

	entries, _ := os.ReadDir(store.UploadsDir())
	if len(entries) != 0 {
		t.Errorf("после транспортной ошибки сканера файлы должны быть удалены, найдено %d", len(entries))
	}
}

func TestUploads_ScanDisabled_Skipped(t *testing.T) {
	// scanner == nil: сканирование выключено, загрузка проходит
	uploads, _, _ := newTestUploads(t, nil)

	outcome := uploads.Upload(context.Background(),
		strings.NewReader("%PDF-1.4"), "resume.pdf", "application/pdf", "user-1")

	if outcome.Status != http.StatusOK {
		t.Fatalf("статус: ожидалось 200, получено %d", outcome.Status)
	}
}
