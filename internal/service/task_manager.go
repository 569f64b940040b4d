package service

import (
	"context"
	"sync"
	"time"

	"taskBuddy/internal/blob"
	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/task"
	"taskBuddy/internal/models/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const descriptionLimit = 300

// TaskManager — единственный владелец коллекции задач в памяти и текущей
// личности. Все мутации идут через адаптер удалённого хранилища; кэш
// меняется только после подтверждения, поэтому после каждой успешной
// операции память и хранилище совпадают для затронутой задачи.
type TaskManager struct {
	repo     RemoteStore
	blobs    blob.Store
	sessions SessionRepository
	provider Authenticator

	// для тестов время подменяемо
	now func() time.Time

	mtx      sync.RWMutex
	tasks    []*task.Task
	user     *user.User
	inflight int
	lastErr  string
	subs     []func()
}

// Authenticator — провайдер интерактивного входа (см. internal/auth).
type Authenticator interface {
	SignIn(ctx context.Context) (*user.User, error)
}

func NewTaskManager(repo RemoteStore, blobs blob.Store, sessions SessionRepository, provider Authenticator) *TaskManager {
	m := &TaskManager{
		repo:     repo,
		blobs:    blobs,
		sessions: sessions,
		provider: provider,
		now:      time.Now,
	}

	// слот сессии читается ровно один раз, на старте процесса
	if sessions != nil {
		if restored, err := sessions.Load(); err != nil {
			logger.Warn("Service: Не удалось прочитать слот сессии", zap.Error(err))
		} else if restored != nil {
			m.user = restored
		}
	}

	return m
}

// Subscribe регистрирует подписчика на изменения коллекции и состояния.
func (m *TaskManager) Subscribe(fn func()) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *TaskManager) notify() {
	m.mtx.RLock()
	subs := append(make([]func(), 0, len(m.subs)), m.subs...)
	m.mtx.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// CurrentUser возвращает текущую личность или nil.
func (m *TaskManager) CurrentUser() *user.User {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// Tasks — снимок коллекции; наружу уходят только копии.
func (m *TaskManager) Tasks() []*task.Task {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	res := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		res = append(res, t.Clone())
	}
	return res
}

// Loading истинно, пока хотя бы один вызов адаптера в полёте. Параллельные
// мутации допустимы, каждая независимо открывает и закрывает свой интервал.
func (m *TaskManager) Loading() bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.inflight > 0
}

// LastError — сообщение последней неуспешной операции; успешная операция
// его очищает.
func (m *TaskManager) LastError() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.lastErr
}

func (m *TaskManager) HealthCheck(ctx context.Context) error {
	return m.repo.HealthCheck(ctx)
}

func (m *TaskManager) begin() {
	m.mtx.Lock()
	m.inflight++
	m.mtx.Unlock()
}

func (m *TaskManager) end() {
	m.mtx.Lock()
	m.inflight--
	m.mtx.Unlock()
}

func (m *TaskManager) fail(opErr *OperationError) *OperationError {
	m.mtx.Lock()
	m.lastErr = opErr.Error()
	m.mtx.Unlock()
	logger.Error("Service: Операция не удалась", opErr, zap.String("kind", opErr.Kind))
	return opErr
}

func (m *TaskManager) succeed() {
	m.mtx.Lock()
	m.lastErr = ""
	m.mtx.Unlock()
}

func (m *TaskManager) requireUser() (*user.User, *OperationError) {
	u := m.CurrentUser()
	if u == nil {
		return nil, NewOperationError(KindAuth, "пользователь не аутентифицирован", nil)
	}
	return u, nil
}

// SignIn выполняет интерактивный вход. Любой неуспех оставляет нас
// разлогиненными, выборка задач не запускается.
func (m *TaskManager) SignIn(ctx context.Context) (*user.User, error) {
	u, err := m.provider.SignIn(ctx)
	if err != nil {
		return nil, m.fail(NewOperationError(KindAuth, "вход не выполнен", err))
	}
	if err := m.SetUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUser заменяет текущую личность. Новый пользователь влечёт полную
// перевыборку его задач, nil очищает коллекцию. Личность сохраняется в
// слоте сессии, чтобы перезапуск не требовал повторного входа.
func (m *TaskManager) SetUser(ctx context.Context, u *user.User) error {
	m.mtx.Lock()
	prev := m.user
	m.user = u
	// при любой смене личности чужие задачи не должны пережить её: новая
	// коллекция появляется только из успешной перевыборки нового владельца
	if u == nil || prev == nil || prev.UID != u.UID {
		m.tasks = nil
	}
	m.mtx.Unlock()

	if m.sessions != nil {
		if u == nil {
			if err := m.sessions.Clear(); err != nil {
				logger.Warn("Service: Не удалось очистить слот сессии", zap.Error(err))
			}
		} else {
			if err := m.sessions.Save(u); err != nil {
				logger.Warn("Service: Не удалось сохранить сессию", zap.Error(err))
			}
		}
	}

	if u == nil {
		logger.Info("Service: Выход выполнен, коллекция очищена")
		m.notify()
		return nil
	}

	logger.Info("Service: Новая личность, перевыборка задач", zap.String("uid", u.UID))
	return m.FetchTasks(ctx)
}

// FetchTasks целиком заменяет коллекцию задачами владельца из удалённого
// хранилища. При отказе прежняя коллекция не трогается.
func (m *TaskManager) FetchTasks(ctx context.Context) error {
	u, opErr := m.requireUser()
	if opErr != nil {
		return m.fail(opErr)
	}

	m.begin()
	fetched, err := m.repo.QueryByOwner(ctx, u.UID)
	m.end()

	if err != nil {
		return m.fail(NewOperationError(KindFetch, "не удалось получить задачи", err))
	}

	m.mtx.Lock()
	m.tasks = fetched
	m.mtx.Unlock()
	m.succeed()
	m.notify()

	logger.Info("Service: Коллекция заменена", zap.Int("count", len(fetched)))
	return nil
}

// CreateTask сохраняет черновик. История всегда начинается заново с одной
// записи "Task created"; неразрешённые вложения загружаются до записи
// метаданных, порядок строгий.
func (m *TaskManager) CreateTask(ctx context.Context, draft *task.Task) (*task.Task, error) {
	u, opErr := m.requireUser()
	if opErr != nil {
		return nil, m.fail(opErr)
	}

	if opErr := validateDraft(draft); opErr != nil {
		return nil, m.fail(opErr)
	}

	prepared := draft.Clone()
	prepared.UserID = u.UID
	prepared.Category = task.NormalizeCategory(prepared.Category)
	if prepared.Status == "" {
		prepared.Status = task.StatusTodo
	}
	prepared.Activity = []task.ActivityRecord{{
		Action:    "Task created",
		Timestamp: m.timestamp(),
	}}

	m.begin()
	defer m.end()

	resolved, err := m.resolveAttachments(ctx, prepared.Attachments)
	if err != nil {
		return nil, m.fail(NewOperationError(KindUpload, "не удалось загрузить вложения", err))
	}
	prepared.Attachments = resolved

	id, err := m.repo.Insert(ctx, prepared)
	if err != nil {
		return nil, m.fail(NewOperationError(KindCreate, "не удалось создать задачу", err))
	}
	prepared.ID = id

	m.mtx.Lock()
	m.tasks = append(m.tasks, prepared)
	m.mtx.Unlock()
	m.succeed()
	m.notify()

	logger.Info("Service: Задача создана", zap.String("task_id", id.String()))
	return prepared.Clone(), nil
}

// UpdateTask сливает частичное обновление: сперва в удалённое хранилище,
// при успехе — те же поля в копию в памяти, опущенные поля сохраняются.
// Каждое успешное обновление дописывает ровно одну запись истории.
func (m *TaskManager) UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	if _, opErr := m.requireUser(); opErr != nil {
		return nil, m.fail(opErr)
	}

	current := m.findTask(id)
	if current == nil {
		return nil, m.fail(NewNotFound(id.String()))
	}

	if opErr := validatePatch(patch); opErr != nil {
		return nil, m.fail(opErr)
	}

	m.begin()
	defer m.end()

	// загрузка блобов строго до записи метаданных: запись зависит от URL
	resolved, err := m.resolveAttachments(ctx, patch.Attachments)
	if err != nil {
		return nil, m.fail(NewOperationError(KindUpload, "не удалось загрузить вложения", err))
	}
	patch.Attachments = resolved

	record := task.ActivityRecord{Action: "Task updated", Timestamp: m.timestamp()}
	if patch.Status != nil {
		record.Action = "Status changed to " + string(*patch.Status)
	}

	merged := current.Clone()
	patch.Apply(merged)
	merged.Activity = append(merged.Activity, record)

	fields := patch.Fields()
	fields["activity"] = merged.Activity
	if patch.Attachments != nil {
		fields["attachments"] = merged.AttachmentURLs()
	}

	if err := m.repo.Patch(ctx, id, fields); err != nil {
		return nil, m.fail(NewOperationError(KindUpdate, "не удалось обновить задачу", err,
			ToDetail("task_id", id.String())))
	}

	// слияние пополевое: параллельное обновление других полей не затирается
	var updated *task.Task
	m.mtx.Lock()
	for _, t := range m.tasks {
		if t.ID == id {
			patch.Apply(t)
			t.Activity = append(t.Activity, record)
			updated = t.Clone()
			break
		}
	}
	m.mtx.Unlock()
	m.succeed()
	m.notify()

	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()))
	if updated == nil {
		// задача исчезла из кэша, пока шёл вызов; хранилище уже обновлено
		return merged, nil
	}
	return updated, nil
}

// DeleteTask удаляет задачу в хранилище и затем из кэша, строго по id.
func (m *TaskManager) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, opErr := m.requireUser(); opErr != nil {
		return m.fail(opErr)
	}

	m.begin()
	err := m.repo.Remove(ctx, id)
	m.end()

	if err != nil {
		return m.fail(NewOperationError(KindDelete, "не удалось удалить задачу", err,
			ToDetail("task_id", id.String())))
	}

	m.mtx.Lock()
	for ind, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:ind], m.tasks[ind+1:]...)
			break
		}
	}
	m.mtx.Unlock()
	m.succeed()
	m.notify()

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (m *TaskManager) findTask(id uuid.UUID) *task.Task {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t.Clone()
		}
	}
	return nil
}

// resolveAttachments загружает неразрешённые блобы и подставляет URL.
// Уже разрешённые проходят как есть.
func (m *TaskManager) resolveAttachments(ctx context.Context, attachments []task.Attachment) ([]task.Attachment, error) {
	if attachments == nil {
		return nil, nil
	}

	resolved := make([]task.Attachment, 0, len(attachments))
	for _, a := range attachments {
		if a.Resolved() {
			resolved = append(resolved, a)
			continue
		}
		url, err := m.blobs.Upload(ctx, a.Data, a.Name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, task.ResolvedAttachment(url))
	}
	return resolved, nil
}

func (m *TaskManager) timestamp() string {
	return m.now().Format("1/2/2006, 3:04:05 PM")
}

func validateDraft(draft *task.Task) *OperationError {
	if draft == nil {
		return NewValidationError("task", "пустой черновик")
	}
	if draft.Name == "" {
		return NewValidationError("name", "название не может быть пустым")
	}
	if len([]rune(draft.Description)) > descriptionLimit {
		return NewValidationError("description", "описание длиннее 300 символов")
	}
	if draft.Status != "" && !task.ValidStatus(draft.Status) {
		return NewValidationError("status", "неизвестный статус")
	}
	if draft.DueDate.IsZero() {
		return NewValidationError("due_date", "дата должна быть задана")
	}
	return nil
}

func validatePatch(patch task.Patch) *OperationError {
	if patch.Name != nil && *patch.Name == "" {
		return NewValidationError("name", "название не может быть пустым")
	}
	if patch.Description != nil && len([]rune(*patch.Description)) > descriptionLimit {
		return NewValidationError("description", "описание длиннее 300 символов")
	}
	if patch.Status != nil && !task.ValidStatus(*patch.Status) {
		return NewValidationError("status", "неизвестный статус")
	}
	return nil
}
