package service

import (
	"context"

	"taskBuddy/internal/models/task"
	"taskBuddy/internal/models/user"

	"github.com/google/uuid"
)

// RemoteStore — адаптер удалённого хранилища задач. Каждая операция —
// «всё или ничего», частичного успеха не бывает.
type RemoteStore interface {
	QueryByOwner(ctx context.Context, uid string) ([]*task.Task, error)
	Insert(ctx context.Context, t *task.Task) (uuid.UUID, error)
	Patch(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Remove(ctx context.Context, id uuid.UUID) error
	HealthCheck(ctx context.Context) error
}

// SessionRepository — долговечный слот с сериализованным пользователем.
type SessionRepository interface {
	Load() (*user.User, error)
	Save(u *user.User) error
	Clear() error
}
