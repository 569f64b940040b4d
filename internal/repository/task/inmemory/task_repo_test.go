package inmemory_test

import (
	"context"
	"testing"
	"time"

	"taskBuddy/internal/models/task"
	repo "taskBuddy/internal/repository"
	"taskBuddy/internal/repository/task/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTask(name, uid string) *task.Task {
	return &task.Task{
		Name:     name,
		DueDate:  task.NewDate(2026, time.September, 15),
		Status:   task.StatusTodo,
		Category: task.CategoryWork,
		UserID:   uid,
		Activity: []task.ActivityRecord{{Action: "Task created", Timestamp: "9/1/2026, 10:00:00 AM"}},
	}
}

// TestTaskStorage_Insert тестирует вставку с присвоением id хранилищем
func TestTaskStorage_Insert(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	id, err := storage.Insert(ctx, mkTask("Pay bills", "uid-1"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Pay bills", got[0].Name)
}

// TestTaskStorage_QueryByOwner тестирует выборку по владельцу
func TestTaskStorage_QueryByOwner(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	_, err := storage.Insert(ctx, mkTask("First", "uid-1"))
	require.NoError(t, err)
	_, err = storage.Insert(ctx, mkTask("Second", "uid-1"))
	require.NoError(t, err)
	_, err = storage.Insert(ctx, mkTask("Other owner", "uid-2"))
	require.NoError(t, err)

	got, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// порядок вставки сохраняется
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)

	// пустой владелец — ошибка, а не пустой список
	_, err = storage.QueryByOwner(ctx, "")
	assert.ErrorIs(t, err, repo.ErrNoOwner)

	got, err = storage.QueryByOwner(ctx, "uid-unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestTaskStorage_Patch тестирует частичное обновление полей
func TestTaskStorage_Patch(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	id, err := storage.Insert(ctx, mkTask("Pay bills", "uid-1"))
	require.NoError(t, err)

	err = storage.Patch(ctx, id, map[string]any{
		"status":   string(task.StatusCompleted),
		"due_date": "2026-10-01",
		"activity": []task.ActivityRecord{
			{Action: "Task created", Timestamp: "9/1/2026, 10:00:00 AM"},
			{Action: "Status changed to COMPLETED", Timestamp: "9/2/2026, 11:00:00 AM"},
		},
	})
	require.NoError(t, err)

	got, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task.StatusCompleted, got[0].Status)
	assert.Equal(t, "2026-10-01", got[0].DueDate.String())
	// опущенные поля не тронуты
	assert.Equal(t, "Pay bills", got[0].Name)
	assert.Len(t, got[0].Activity, 2)

	err = storage.Patch(ctx, uuid.New(), map[string]any{"name": "ghost"})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// TestTaskStorage_Remove тестирует удаление
func TestTaskStorage_Remove(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first, err := storage.Insert(ctx, mkTask("First", "uid-1"))
	require.NoError(t, err)
	_, err = storage.Insert(ctx, mkTask("Second", "uid-1"))
	require.NoError(t, err)

	require.NoError(t, storage.Remove(ctx, first))

	got, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Second", got[0].Name)

	assert.ErrorIs(t, storage.Remove(ctx, first), repo.ErrNotFound)
}

// TestTaskStorage_Isolation тестирует, что наружу уходят только копии
func TestTaskStorage_Isolation(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	original := mkTask("Pay bills", "uid-1")
	_, err := storage.Insert(ctx, original)
	require.NoError(t, err)

	// правка возвращённой копии не протекает в хранилище
	got, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	got[0].Name = "mutated"

	again, err := storage.QueryByOwner(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Pay bills", again[0].Name)
}
