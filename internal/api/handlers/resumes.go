// resumes.go — обработчики загрузки, листинга и удаления резюме.
package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/jobportal/gateway/internal/api/errors"
	"github.com/arturkryukov/jobportal/gateway/internal/api/middleware"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/service"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/filestore"
)

// Тексты ответов операций с резюме.
const (
	MsgResumeRequired  = "Resume file is required."
	MsgFileTooLarge    = "File is too large."
	MsgInvalidFilename = "Invalid filename."
	MsgFileNotFound    = "File not found."
	MsgFileDeleted     = "File deleted successfully."
)

// ResumesHandler — обработчики файлов резюме.
type ResumesHandler struct {
	uploads *service.Uploads
	store   *filestore.FileStore
	// maxUploadSize — лимит размера загрузки (GW_MAX_UPLOAD_SIZE)
	maxUploadSize int64
}

// NewResumesHandler создаёт обработчик резюме.
func NewResumesHandler(uploads *service.Uploads, store *filestore.FileStore, maxUploadSize int64) *ResumesHandler {
	return &ResumesHandler{
		uploads:       uploads,
		store:         store,
		maxUploadSize: maxUploadSize,
	}
}

// multipartOverhead — запас на границы и заголовки multipart-конверта.
// Лимит считается по размеру файла, поэтому тело запроса может быть
// чуть больше maxUploadSize.
const multipartOverhead = 64 << 10

// Upload — загрузка резюме (multipart поле "resume").
// Токен опционален: с токеном файл хранится бессрочно от имени
// владельца, без токена — анонимно с TTL.
// POST /upload (auth optional)
func (h *ResumesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Жёсткий лимит на всё тело; превышение оборвёт чтение
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("resume")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apierrors.ValidationError(w, MsgFileTooLarge)
			return
		}
		apierrors.ValidationError(w, MsgResumeRequired)
		return
	}
	defer file.Close()

	// Лимит по размеру самого файла: ровно maxUploadSize ещё проходит
	if header.Size > h.maxUploadSize {
		apierrors.ValidationError(w, MsgFileTooLarge)
		return
	}

	owner := ""
	if identity := middleware.IdentityFromContext(r.Context()); identity != nil {
		owner = identity.Subject
	}

	outcome := h.uploads.Upload(r.Context(), file, header.Filename,
		header.Header.Get("Content-Type"), owner)
	writeOutcome(w, outcome)
}

// List — листинг хранимых резюме.
// GET /resumes
func (h *ResumesHandler) List(w http.ResponseWriter, _ *http.Request) {
	files, err := h.store.List()
	if err != nil {
		apierrors.InternalError(w, "Failed to list files.")
		return
	}

	if files == nil {
		files = []model.StoredResume{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// Delete — удаление резюме вместе с sidecar-метаданными.
// DELETE /resumes/{filename} (auth required)
func (h *ResumesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Защита от path traversal: имя файла не содержит разделителей пути
	if filename == "" || filename != filepath.Base(filename) ||
		strings.Contains(filename, "..") {
		apierrors.ValidationError(w, MsgInvalidFilename)
		return
	}

	if !h.store.Exists(filename) {
		apierrors.NotFound(w, MsgFileNotFound)
		return
	}

	if err := h.store.Delete(filename); err != nil {
		apierrors.InternalError(w, "Failed to delete file.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": MsgFileDeleted})
}
