package selection

import (
	"context"
	"sync"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TaskMutator — часть менеджера задач, нужная пакетным операциям.
type TaskMutator interface {
	UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Controller держит множество выбранных задач одной сессии представления
// (идентичность по id) и применяет к ним пакетные операции. Пакет — это
// последовательность независимых одиночных операций, не атомарная группа.
type Controller struct {
	manager TaskMutator

	mtx      sync.Mutex
	selected map[uuid.UUID]*task.Task
	order    []uuid.UUID
}

func NewController(manager TaskMutator) *Controller {
	return &Controller{
		manager:  manager,
		selected: make(map[uuid.UUID]*task.Task),
	}
}

// Toggle добавляет задачу в выбор, если её там нет, и убирает, если есть.
func (c *Controller) Toggle(t *task.Task) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.selected[t.ID]; ok {
		delete(c.selected, t.ID)
		for ind, id := range c.order {
			if id == t.ID {
				c.order = append(c.order[:ind], c.order[ind+1:]...)
				break
			}
		}
		return
	}

	c.selected[t.ID] = t.Clone()
	c.order = append(c.order, t.ID)
}

func (c *Controller) Clear() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.selected = make(map[uuid.UUID]*task.Task)
	c.order = nil
}

func (c *Controller) Selected() []*task.Task {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	res := make([]*task.Task, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.selected[id].Clone())
	}
	return res
}

func (c *Controller) Count() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.selected)
}

// BatchSetStatus последовательно переводит каждую выбранную задачу с
// присвоенным id в новый статус. Частичный отказ возможен: уже применённые
// обновления не откатываются, ошибки собираются по каждой задаче. Выбор
// очищается после завершения пакета независимо от исхода.
func (c *Controller) BatchSetStatus(ctx context.Context, status task.Status) error {
	targets := c.Selected()
	defer c.Clear()

	var batchErr error
	applied := 0
	for _, t := range targets {
		if t.ID == uuid.Nil {
			continue
		}
		patch := task.NewPatch(task.WithStatus(status))
		if _, err := c.manager.UpdateTask(ctx, t.ID, patch); err != nil {
			logger.Warn("Selection: Ошибка пакетного обновления",
				zap.String("task_id", t.ID.String()),
				zap.Error(err))
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		applied++
	}

	logger.Info("Selection: Пакетная смена статуса завершена",
		zap.String("status", string(status)),
		zap.Int("applied", applied),
		zap.Int("failed", len(targets)-applied))

	return batchErr
}

// BatchDelete — та же семантика частичного отказа, что и у смены статуса.
func (c *Controller) BatchDelete(ctx context.Context) error {
	targets := c.Selected()
	defer c.Clear()

	var batchErr error
	applied := 0
	for _, t := range targets {
		if t.ID == uuid.Nil {
			continue
		}
		if err := c.manager.DeleteTask(ctx, t.ID); err != nil {
			logger.Warn("Selection: Ошибка пакетного удаления",
				zap.String("task_id", t.ID.String()),
				zap.Error(err))
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		applied++
	}

	logger.Info("Selection: Пакетное удаление завершено",
		zap.Int("applied", applied),
		zap.Int("failed", len(targets)-applied))

	return batchErr
}
