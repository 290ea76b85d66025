// upload.go — конвейер загрузки резюме.
// Состояния: получен → сканирование → {принят, отклонён}; принятый файл
// хранится бессрочно (владелец известен) или с TTL (анонимная загрузка).
// Любая ошибка конвейера делает best-effort очистку: частично
// загруженные файлы на диске не остаются.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/scanclient"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/attr"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/filestore"
)

// Тексты ответов конвейера загрузки.
const (
	MsgFileUploaded    = "File uploaded successfully."
	MsgUnsupportedType = "Only PDF and Word documents are allowed."
	MsgScanRejected    = "File failed validation."
	MsgUploadError     = "File upload failed."
)

// allowedMimeTypes — допустимые MIME-типы резюме.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Метрики конвейера загрузки
var (
	// uploadsTotal — количество загрузок по исходу.
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gw_uploads_total",
			Help: "Количество загрузок резюме по исходу",
		},
		[]string{"outcome"},
	)
)

// Scanner — вызов сервиса сканирования (scanclient.Client).
type Scanner interface {
	Scan(ctx context.Context, filePath string, meta scanclient.ScanMetadata) (*scanclient.ScanResult, error)
}

// Uploads — конвейер загрузки резюме.
type Uploads struct {
	store *filestore.FileStore
	// scanner — nil, когда сканирование выключено (GW_SCAN_URL пустой)
	scanner  Scanner
	notifier *Notifier
	// anonTTL — срок хранения анонимных загрузок
	anonTTL time.Duration
	logger  *slog.Logger
	// now — источник времени, подменяется в тестах
	now func() time.Time
}

// NewUploads создаёт конвейер загрузки.
func NewUploads(store *filestore.FileStore, scanner Scanner, notifier *Notifier, anonTTL time.Duration, logger *slog.Logger) *Uploads {
	return &Uploads{
		store:    store,
		scanner:  scanner,
		notifier: notifier,
		anonTTL:  anonTTL,
		logger:   logger.With(slog.String("component", "uploads")),
		now:      time.Now,
	}
}

// Upload проводит файл через конвейер: проверка типа → запись на диск →
// sidecar-метаданные → сканирование → ответ. owner — subject владельца,
// пустая строка означает анонимную загрузку с TTL.
func (u *Uploads) Upload(ctx context.Context, reader io.Reader, originalFilename, contentType string, owner string) Outcome {
	mimeType := resolveMimeType(contentType, originalFilename)
	if !allowedMimeTypes[mimeType] {
		uploadsTotal.WithLabelValues("rejected").Inc()
		u.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Resume upload rejected: unsupported type %s.", mimeType),
			Status:  model.SeverityError,
		})
		return Outcome{
			Status: http.StatusBadRequest,
			Body:   map[string]string{"error": MsgUnsupportedType},
		}
	}

	uploadedAt := u.now().UTC()

	saved, err := u.store.Save(reader, originalFilename, owner, uploadedAt)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		u.logger.Error("Ошибка записи загрузки на диск",
			slog.String("filename", originalFilename),
			slog.String("error", err.Error()),
		)
		u.notifier.Dispatch(model.NotificationEvent{
			Message: fmt.Sprintf("Resume upload failed for %s.", originalFilename),
			Status:  model.SeverityError,
			Details: err.Error(),
		})
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgUploadError},
		}
	}

	// Sidecar-метаданные: дедлайн удаления анонимных загрузок
	// персистентен и переживает перезапуск
	resumeAttr := &model.ResumeAttr{
		Owner:            owner,
		OriginalFilename: originalFilename,
		ContentType:      mimeType,
		Size:             saved.Size,
		UploadedAt:       uploadedAt,
	}
	if owner == "" {
		expiresAt := uploadedAt.Add(u.anonTTL)
		resumeAttr.ExpiresAt = &expiresAt
	}

	if err := attr.Write(saved.FullPath, resumeAttr); err != nil {
		u.cleanup(saved.StorageName)
		uploadsTotal.WithLabelValues("error").Inc()
		u.logger.Error("Ошибка записи sidecar-метаданных",
			slog.String("storage_name", saved.StorageName),
			slog.String("error", err.Error()),
		)
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": MsgUploadError},
		}
	}

	// Сканирование содержимого (если настроено)
	if u.scanner != nil {
		scanResult, err := u.scanner.Scan(ctx, saved.FullPath, scanclient.ScanMetadata{
			OriginalFilename: originalFilename,
			ContentType:      mimeType,
			Size:             saved.Size,
			Owner:            owner,
		})
		if err != nil {
			u.cleanup(saved.StorageName)
			uploadsTotal.WithLabelValues("error").Inc()
			u.logger.Error("Сервис сканирования недоступен",
				slog.String("storage_name", saved.StorageName),
				slog.String("error", err.Error()),
			)
			u.notifier.Dispatch(model.NotificationEvent{
				Message: fmt.Sprintf("Resume upload failed for %s.", originalFilename),
				Status:  model.SeverityError,
				Details: err.Error(),
			})
			return Outcome{
				Status: http.StatusInternalServerError,
				Body:   map[string]string{"error": MsgUploadError},
			}
		}

		if !scanResult.Success {
			u.cleanup(saved.StorageName)
			uploadsTotal.WithLabelValues("rejected").Inc()
			details := scanResult.Details
			if details == "" {
				details = MsgScanRejected
			}
			u.notifier.Dispatch(model.NotificationEvent{
				Message: fmt.Sprintf("Resume upload rejected by scan: %s.", originalFilename),
				Status:  model.SeverityError,
				Details: details,
			})
			return Outcome{
				Status: http.StatusBadRequest,
				Body:   map[string]string{"error": details},
			}
		}
	}

	uploadsTotal.WithLabelValues("success").Inc()
	u.logger.Info("Резюме загружено",
		slog.String("storage_name", saved.StorageName),
		slog.Int64("size", saved.Size),
		slog.Bool("anonymous", owner == ""),
	)
	u.notifier.Dispatch(model.NotificationEvent{
		Message: fmt.Sprintf("Resume uploaded: %s.", originalFilename),
		Status:  model.SeveritySuccess,
	})

	return Outcome{
		Status: http.StatusOK,
		Body: map[string]any{
			"message": MsgFileUploaded,
			"file": map[string]any{
				"name":     saved.StorageName,
				"size":     saved.Size,
				"mimeType": mimeType,
			},
		},
	}
}

// cleanup удаляет файл и sidecar best-effort после ошибки конвейера.
func (u *Uploads) cleanup(storageName string) {
	if err := u.store.Delete(storageName); err != nil {
		u.logger.Warn("Ошибка очистки после неудачной загрузки",
			slog.String("storage_name", storageName),
			slog.String("error", err.Error()),
		)
	}
}

// resolveMimeType определяет MIME-тип загрузки: из заголовка part
// или, когда заголовок пустой либо неинформативный, из расширения.
func resolveMimeType(contentType, filename string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return filestore.MimeTypeByExtension(filename)
}
