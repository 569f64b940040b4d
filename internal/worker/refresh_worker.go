package worker

import (
	"context"
	"time"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/user"

	"go.uber.org/zap"
)

// Refresher — та часть менеджера, что нужна фоновой синхронизации.
type Refresher interface {
	CurrentUser() *user.User
	FetchTasks(ctx context.Context) error
}

// RefreshWorker периодически перечитывает задачи владельца из удалённого
// хранилища, чтобы локальная копия не отставала от других клиентов.
type RefreshWorker struct {
	manager  Refresher
	interval time.Duration
}

func NewRefreshWorker(manager Refresher, interval *time.Duration) *RefreshWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	return &RefreshWorker{
		manager:  manager,
		interval: intervalToSet,
	}
}

func (w *RefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая синхронизация задач", zap.Time("started_at", time.Now()))
			w.Refresh(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая синхронизация останавливается")
			return
		}
	}
}

func (w *RefreshWorker) Refresh(ctx context.Context) {
	start := time.Now()

	if w.manager.CurrentUser() == nil {
		// без владельца синхронизировать нечего
		return
	}

	if err := w.manager.FetchTasks(ctx); err != nil {
		logger.Warn("Worker: Ошибка синхронизации задач", zap.Error(err))
		return
	}

	logger.Info("Worker: Синхронизация завершена", zap.Duration("ms", time.Since(start)))
}
