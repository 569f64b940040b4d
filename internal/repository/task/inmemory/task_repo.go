package inmemory

import (
	"context"
	"sync"

	"taskBuddy/internal/models/task"
	repo "taskBuddy/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage — адаптер удалённого хранилища в памяти. Используется в
// тестах и в dev-режиме вместо PostgreSQL; контракт тот же.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	ids     []uuid.UUID
	mtx     *sync.RWMutex
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		ids:     []uuid.UUID{},
		mtx:     &sync.RWMutex{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) QueryByOwner(ctx context.Context, uid string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if uid == "" {
		return nil, repo.ErrNoOwner
	}

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.UserID != uid {
			continue
		}
		res = append(res, t.Clone())
	}
	return res, nil
}

func (s *TaskStorage) Insert(ctx context.Context, t *task.Task) (uuid.UUID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// id присваивает хранилище, как и настоящий удалённый store
	id := uuid.New()
	stored := t.Clone()
	stored.ID = id

	s.storage[id] = stored
	s.ids = append(s.ids, id)
	return id, nil
}

func (s *TaskStorage) Patch(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	for key, value := range fields {
		switch key {
		case "name":
			stored.Name = value.(string)
		case "description":
			stored.Description = value.(string)
		case "due_date":
			due, err := task.ParseDate(value.(string))
			if err != nil {
				return err
			}
			stored.DueDate = due
		case "status":
			stored.Status = task.Status(value.(string))
		case "category":
			stored.Category = task.Category(value.(string))
		case "activity":
			records := value.([]task.ActivityRecord)
			stored.Activity = append([]task.ActivityRecord(nil), records...)
		case "attachments":
			urls := value.([]string)
			stored.Attachments = make([]task.Attachment, 0, len(urls))
			for _, url := range urls {
				stored.Attachments = append(stored.Attachments, task.ResolvedAttachment(url))
			}
		}
	}
	return nil
}

func (s *TaskStorage) Remove(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
