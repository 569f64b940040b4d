package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/migrations"
	"taskBuddy/internal/models/task"
	repo "taskBuddy/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage — адаптер удалённого хранилища поверх PostgreSQL.
// Состояния не держит, каждая операция — один запрос «всё или ничего».
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка разбора строки подключения", err)
		return nil, fmt.Errorf("разбор строки подключения: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Migrate накатывает встроенные миграции через golang-migrate.
func Migrate(connString string) error {
	src, err := migrations.Source()
	if err != nil {
		return fmt.Errorf("чтение встроенных миграций: %w", err)
	}

	dsn := strings.Replace(connString, "postgres://", "pgx5://", 1)
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("инициализация мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

// QueryByOwner возвращает все задачи владельца в порядке создания.
func (s *Storage) QueryByOwner(ctx context.Context, uid string) ([]*task.Task, error) {
	start := time.Now()

	if uid == "" {
		return nil, repo.ErrNoOwner
	}

	query := `SELECT
				id,
				name,
				description,
				due_date,
				status,
				category,
				activity,
				user_id,
				attachments
				FROM tasks
				WHERE user_id = $1
				ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, uid)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи владельца", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач владельца: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, nil
}

// Insert сохраняет задачу без id и возвращает id, присвоенный хранилищем.
func (s *Storage) Insert(ctx context.Context, t *task.Task) (uuid.UUID, error) {
	start := time.Now()

	query := `INSERT INTO tasks
				(name, description, due_date, status, category, activity, user_id, attachments)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`

	var id uuid.UUID
	err := s.pool.QueryRow(ctx, query,
		t.Name,
		t.Description,
		t.DueDate.Time,
		t.Status,
		t.Category,
		t.Activity,
		t.UserID,
		t.AttachmentURLs(),
	).Scan(&id)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return uuid.Nil, fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return id, nil
}

// колонки, которые разрешено менять через Patch
var patchColumns = map[string]string{
	"name":        "name",
	"description": "description",
	"due_date":    "due_date",
	"status":      "status",
	"category":    "category",
	"activity":    "activity",
	"attachments": "attachments",
}

// Patch обновляет только переданные поля. Имена полей — проводной контракт.
func (s *Storage) Patch(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	start := time.Now()

	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		if _, ok := patchColumns[key]; !ok {
			return fmt.Errorf("неизвестное поле патча: %s", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	set := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for i, key := range keys {
		set = append(set, fmt.Sprintf("%s = $%d", patchColumns[key], i+1))
		args = append(args, fields[key])
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err,
			zap.String("task_id", id.String()),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		logger.Warn("Repository: Обновление несуществующей задачи", zap.String("task_id", id.String()))
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// Remove удаляет задачу целиком.
func (s *Storage) Remove(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func scanTask(rows pgx.Rows) (*task.Task, error) {
	t := &task.Task{}
	var due time.Time
	var urls []string

	err := rows.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&due,
		&t.Status,
		&t.Category,
		&t.Activity,
		&t.UserID,
		&urls,
	)
	if err != nil {
		return nil, err
	}

	t.DueDate = task.DateOf(due)
	t.Attachments = make([]task.Attachment, 0, len(urls))
	for _, url := range urls {
		t.Attachments = append(t.Attachments, task.ResolvedAttachment(url))
	}
	return t, nil
}
