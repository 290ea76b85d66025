// Пакет filestore — операции с файлами резюме на диске.
// Запись streaming, атомарная (temp → fsync → rename); имена файлов
// детерминированно собираются из владельца, времени загрузки и
// исходного имени, поэтому блокировки не нужны.
package filestore

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/attr"
)

// AnonymousOwner — имя владельца для анонимных загрузок в имени файла.
const AnonymousOwner = "anonymous"

// FileStore — управление файлами резюме на диске.
type FileStore struct {
	// uploadsDir — корневая директория хранения (GW_UPLOADS_DIR)
	uploadsDir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// StorageName — имя файла в uploadsDir
	StorageName string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
}

// New создаёт новый FileStore. Проверяет и создаёт директорию
// если она не существует.
func New(uploadsDir string) (*FileStore, error) {
	if err := os.MkdirAll(uploadsDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", uploadsDir, err)
	}

	return &FileStore{uploadsDir: uploadsDir}, nil
}

// Save записывает данные из reader на диск.
// Имя файла: {owner-or-anonymous}_{timestamp}_{original}.{ext}
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(reader io.Reader, originalFilename, owner string, uploadedAt time.Time) (*SaveResult, error) {
	storageName := GenerateStorageName(originalFilename, owner, uploadedAt)
	fullPath := filepath.Join(fs.uploadsDir, storageName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		StorageName: storageName,
		FullPath:    fullPath,
		Size:        size,
	}, nil
}

// Delete удаляет файл и его sidecar с диска.
// Возвращает nil если файл уже не существует.
func (fs *FileStore) Delete(storageName string) error {
	fullPath := filepath.Join(fs.uploadsDir, storageName)

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", storageName, err)
	}

	// Sidecar удаляем best-effort — файл данных уже удалён
	_ = attr.Delete(attr.AttrFilePath(fullPath))

	return nil
}

// Exists проверяет существование файла на диске.
func (fs *FileStore) Exists(storageName string) bool {
	_, err := os.Stat(filepath.Join(fs.uploadsDir, storageName))
	return err == nil
}

// FullPath возвращает абсолютный путь к файлу в хранилище.
func (fs *FileStore) FullPath(storageName string) string {
	return filepath.Join(fs.uploadsDir, storageName)
}

// UploadsDir возвращает путь к директории загрузок.
func (fs *FileStore) UploadsDir() string {
	return fs.uploadsDir
}

// List возвращает перечень хранимых резюме: имя, размер, время модификации
// и MIME-тип, выведенный из расширения. Sidecar-файлы и temp-файлы
// в листинг не попадают. Результат отсортирован по имени.
func (fs *FileStore) List() ([]model.StoredResume, error) {
	entries, err := os.ReadDir(fs.uploadsDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории загрузок: %w", err)
	}

	var result []model.StoredResume
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if attr.IsAttrFile(name) || strings.HasSuffix(name, ".tmp") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		result = append(result, model.StoredResume{
			Name:       name,
			Size:       info.Size(),
			MimeType:   MimeTypeByExtension(name),
			ModifiedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// MimeTypeByExtension выводит MIME-тип из расширения имени файла.
// Неизвестные расширения — application/octet-stream.
func MimeTypeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	// Офисные форматы фиксируем явно — системная mime-база может их не знать
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// GenerateStorageName собирает имя файла для хранения на диске.
// Формат: {owner}_{timestamp}_{original}.{ext}
// Пример: anonymous_20260829T101500_resume.pdf
// Уникальность обеспечивается парой владелец+время загрузки.
func GenerateStorageName(originalFilename, owner string, uploadedAt time.Time) string {
	ext := filepath.Ext(originalFilename)
	name := strings.TrimSuffix(filepath.Base(originalFilename), ext)

	name = sanitize(name)
	if owner == "" {
		owner = AnonymousOwner
	}
	owner = sanitize(owner)

	// Ограничиваем длину для предотвращения проблем с FS
	if len(name) > 50 {
		name = name[:50]
	}
	if len(owner) > 40 {
		owner = owner[:40]
	}

	ts := uploadedAt.UTC().Format("20060102T150405.000000000")

	if ext != "" {
		return fmt.Sprintf("%s_%s_%s%s", owner, ts, name, strings.ToLower(ext))
	}
	return fmt.Sprintf("%s_%s_%s", owner, ts, name)
}

// sanitize убирает небезопасные символы из строки для использования в имени файла.
// Оставляет только буквы, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' ||
			(r >= 0x0400 && r <= 0x04FF) { // Кириллица
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
