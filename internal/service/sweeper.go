// sweeper.go — фоновая очистка просроченных анонимных загрузок.
//
// Дедлайн удаления хранится в sidecar-файле атрибутов, поэтому
// перезапуск Gateway ничего не теряет: первый проход после старта
// подбирает все просроченные файлы.
//
// Запускается как горутина с периодическим тикером (GW_SWEEP_INTERVAL).
package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/jobportal/gateway/internal/storage/attr"
	"github.com/arturkryukov/jobportal/gateway/internal/storage/filestore"
)

// Prometheus метрики sweeper'а
var (
	// sweeperRunsTotal — количество запусков sweeper'а.
	sweeperRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gw_sweeper_runs_total",
		Help: "Общее количество запусков очистки просроченных загрузок",
	})

	// sweeperFilesDeletedTotal — количество удалённых файлов.
	sweeperFilesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gw_sweeper_files_deleted_total",
		Help: "Общее количество файлов, удалённых очисткой",
	})
)

// SweepResult — результат одного прохода очистки.
type SweepResult struct {
	// DeletedCount — количество удалённых файлов
	DeletedCount int
	// Errors — количество ошибок при обработке файлов
	Errors int
	// Duration — длительность прохода
	Duration time.Duration
}

// Sweeper — фоновая очистка просроченных загрузок.
type Sweeper struct {
	store    *filestore.FileStore
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
}

// NewSweeper создаёт sweeper.
func NewSweeper(store *filestore.FileStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With(slog.String("component", "sweeper")),
	}
}

// Start запускает фоновую горутину очистки с периодическим тикером.
// Вызывается один раз при старте приложения.
func (s *Sweeper) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(sweepCtx)

	s.logger.Info("Очистка просроченных загрузок запущена",
		slog.String("interval", s.interval.String()),
	)
}

// Stop останавливает фоновый процесс очистки.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("Очистка просроченных загрузок остановлена")
}

// run — основной цикл фоновой горутины.
func (s *Sweeper) run(ctx context.Context) {
	// Первый проход — сразу после старта: подбираем файлы,
	// просроченные за время простоя процесса
	s.RunOnce(time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(time.Now().UTC())
		}
	}
}

// RunOnce выполняет один проход очистки: сканирует sidecar-файлы
// и удаляет файлы с истёкшим дедлайном на момент now.
// Потокобезопасен: mutex защищает от параллельного запуска.
func (s *Sweeper) RunOnce(now time.Time) *SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &SweepResult{}

	entries, err := attr.ScanDir(s.store.UploadsDir())
	if err != nil {
		s.logger.Error("Ошибка сканирования директории загрузок",
			slog.String("error", err.Error()),
		)
		result.Errors++
		sweeperRunsTotal.Inc()
		return result
	}

	for _, entry := range entries {
		if !entry.Attr.IsExpired(now) {
			continue
		}

		storageName := filepath.Base(entry.DataFilePath)
		if err := s.store.Delete(storageName); err != nil {
			s.logger.Error("Ошибка удаления просроченного файла",
				slog.String("storage_name", storageName),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		s.logger.Debug("Просроченный файл удалён",
			slog.String("storage_name", storageName),
			slog.Time("expired_at", *entry.Attr.ExpiresAt),
		)
		result.DeletedCount++
	}

	result.Duration = time.Since(start)

	sweeperRunsTotal.Inc()
	sweeperFilesDeletedTotal.Add(float64(result.DeletedCount))

	if result.DeletedCount > 0 || result.Errors > 0 {
		s.logger.Info("Проход очистки завершён",
			slog.Int("deleted", result.DeletedCount),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}

	return result
}
