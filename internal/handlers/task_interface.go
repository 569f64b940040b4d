package handlers

import (
	"context"

	"taskBuddy/internal/models/task"
	"taskBuddy/internal/models/user"

	"github.com/google/uuid"
)

// Service — менеджер состояния задач, каким его видит HTTP-слой.
type Service interface {
	SignIn(ctx context.Context) (*user.User, error)
	SetUser(ctx context.Context, u *user.User) error
	CurrentUser() *user.User
	FetchTasks(ctx context.Context) error
	Tasks() []*task.Task
	CreateTask(ctx context.Context, draft *task.Task) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	Loading() bool
	LastError() string
	HealthCheck(ctx context.Context) error
}

// Selection — контроллер выбора и пакетных операций.
type Selection interface {
	Toggle(t *task.Task)
	Clear()
	Selected() []*task.Task
	BatchSetStatus(ctx context.Context, status task.Status) error
	BatchDelete(ctx context.Context) error
}
