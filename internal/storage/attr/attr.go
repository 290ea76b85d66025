// Пакет attr — sidecar-файлы атрибутов резюме (*.attr.json).
// Рядом с каждым файлом данных лежит JSON с владельцем, исходным именем,
// MIME-типом и сроком хранения. Срок хранения персистентен: сборщик
// просроченных файлов переживает перезапуск Gateway.
package attr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// Suffix — суффикс sidecar-файла атрибутов.
const Suffix = ".attr.json"

// AttrFilePath возвращает путь sidecar-файла для файла данных.
func AttrFilePath(dataFilePath string) string {
	return dataFilePath + Suffix
}

// DataFilePath возвращает путь файла данных по пути sidecar-файла.
func DataFilePath(attrFilePath string) string {
	return strings.TrimSuffix(attrFilePath, Suffix)
}

// IsAttrFile проверяет, является ли имя файла sidecar-файлом атрибутов.
func IsAttrFile(name string) bool {
	return strings.HasSuffix(name, Suffix)
}

// Write записывает атрибуты в sidecar-файл рядом с файлом данных.
// Паттерн: temp файл → запись → fsync → atomic rename.
func Write(dataFilePath string, a *model.ResumeAttr) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация атрибутов: %w", err)
	}

	attrPath := AttrFilePath(dataFilePath)
	tmpPath := attrPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("создание временного файла атрибутов: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("запись атрибутов: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync атрибутов: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("закрытие файла атрибутов: %w", err)
	}

	if err := os.Rename(tmpPath, attrPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("переименование файла атрибутов: %w", err)
	}

	return nil
}

// Read читает атрибуты из sidecar-файла рядом с файлом данных.
// Если sidecar не существует — возвращает os.ErrNotExist.
func Read(dataFilePath string) (*model.ResumeAttr, error) {
	data, err := os.ReadFile(AttrFilePath(dataFilePath))
	if err != nil {
		return nil, err
	}

	var a model.ResumeAttr
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("разбор файла атрибутов %s: %w", AttrFilePath(dataFilePath), err)
	}

	return &a, nil
}

// Delete удаляет sidecar-файл. Отсутствие файла ошибкой не считается.
func Delete(attrFilePath string) error {
	err := os.Remove(attrFilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление файла атрибутов %s: %w", attrFilePath, err)
	}
	return nil
}

// Entry — пара файл данных + его атрибуты при обходе директории.
type Entry struct {
	// DataFilePath — полный путь файла данных
	DataFilePath string
	// Attr — разобранные атрибуты
	Attr *model.ResumeAttr
}

// ScanDir обходит директорию и возвращает все файлы данных с валидными
// sidecar-атрибутами. Sidecar без файла данных (осиротевший) удаляется.
// Битые sidecar-файлы пропускаются — их подберёт следующий проход.
func ScanDir(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("чтение директории %s: %w", dir, err)
	}

	var result []Entry
	for _, e := range entries {
		if e.IsDir() || !IsAttrFile(e.Name()) {
			continue
		}

		attrPath := filepath.Join(dir, e.Name())
		dataPath := DataFilePath(attrPath)

		if _, err := os.Stat(dataPath); os.IsNotExist(err) {
			// Осиротевший sidecar — файл данных уже удалён
			_ = os.Remove(attrPath)
			continue
		}

		a, err := Read(dataPath)
		if err != nil {
			continue
		}

		result = append(result, Entry{DataFilePath: dataPath, Attr: a})
	}

	return result, nil
}
