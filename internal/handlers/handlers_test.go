package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"taskBuddy/internal/handlers"
	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/task"
	"taskBuddy/internal/models/user"
	"taskBuddy/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

// MockTaskService - мок менеджера задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) SignIn(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockTaskService) SetUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockTaskService) CurrentUser() *user.User {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*user.User)
}

func (m *MockTaskService) FetchTasks(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) Tasks() []*task.Task {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*task.Task)
}

func (m *MockTaskService) CreateTask(ctx context.Context, draft *task.Task) (*task.Task, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) Loading() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTaskService) LastError() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ handlers.Service = (*MockTaskService)(nil)

// MockSelection - мок контроллера выбора
type MockSelection struct {
	mock.Mock
}

func (m *MockSelection) Toggle(t *task.Task) {
	m.Called(t)
}

func (m *MockSelection) Clear() {
	m.Called()
}

func (m *MockSelection) Selected() []*task.Task {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*task.Task)
}

func (m *MockSelection) BatchSetStatus(ctx context.Context, status task.Status) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

func (m *MockSelection) BatchDelete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ handlers.Selection = (*MockSelection)(nil)

func newRouter(svc *MockTaskService, sel *MockSelection) *chi.Mux {
	handler := handlers.NewTaskHandler(svc, sel)

	r := chi.NewRouter()
	r.Post("/auth/login", handler.Login)
	r.Get("/auth/me", handler.Me)
	r.Get("/tasks", handler.GetTasks)
	r.Post("/tasks", handler.PostTask)
	r.Get("/tasks/board", handler.GetBoard)
	r.Patch("/tasks/{id}", handler.UpdateTaskByID)
	r.Delete("/tasks/{id}", handler.DeleteTaskByID)
	r.Post("/selection/toggle", handler.ToggleSelection)
	r.Post("/selection/status", handler.BatchStatus)
	r.Get("/health", handler.HealthCheck)
	return r
}

func sampleTask(name string, status task.Status) *task.Task {
	return &task.Task{
		ID:       uuid.New(),
		Name:     name,
		DueDate:  task.NewDate(2026, time.September, 15),
		Status:   status,
		Category: task.CategoryWork,
		UserID:   "uid-1",
	}
}

// TestGetTasks тестирует выдачу коллекции с фильтрами
func TestGetTasks(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		tasks        []*task.Task
		expectedCode int
		expectedLen  int
	}{
		{
			name:         "success - all tasks",
			url:          "/tasks",
			tasks:        []*task.Task{sampleTask("Report", task.StatusTodo), sampleTask("Pay bills", task.StatusTodo)},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name:         "success - search narrows result",
			url:          "/tasks?q=rep",
			tasks:        []*task.Task{sampleTask("Report", task.StatusTodo), sampleTask("Pay bills", task.StatusTodo)},
			expectedCode: http.StatusOK,
			expectedLen:  1,
		},
		{
			name:         "error - unknown due filter",
			url:          "/tasks?due=SOMEDAY",
			tasks:        nil,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTaskService)
			if tt.expectedCode == http.StatusOK {
				svc.On("Tasks").Return(tt.tasks)
				svc.On("Loading").Return(false)
				svc.On("LastError").Return("")
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode != http.StatusOK {
				return
			}

			var body struct {
				Tasks []json.RawMessage `json:"tasks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Tasks, tt.expectedLen)
		})
	}
}

// TestGetBoard тестирует доску
func TestGetBoard(t *testing.T) {
	svc := new(MockTaskService)
	svc.On("Tasks").Return([]*task.Task{
		sampleTask("Report", task.StatusTodo),
		sampleTask("Slides", task.StatusInProgress),
		sampleTask("Pay bills", task.StatusCompleted),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/board", nil)
	newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Board map[string][]json.RawMessage `json:"board"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Board["TODO"], 1)
	assert.Len(t, body.Board["IN-PROGRESS"], 1)
	assert.Len(t, body.Board["COMPLETED"], 1)
}

// TestPostTask тестирует создание задачи
func TestPostTask(t *testing.T) {
	tests := []struct {
		name         string
		contentType  string
		body         string
		setupMock    func(*MockTaskService)
		expectedCode int
	}{
		{
			name:        "success - task created",
			contentType: "application/json",
			body:        `{"name":"Pay bills","due_date":"2026-09-15","category":"Personal"}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.AnythingOfType("*task.Task")).
					Return(sampleTask("Pay bills", task.StatusTodo), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "error - wrong content type",
			contentType:  "text/plain",
			body:         `{}`,
			setupMock:    func(m *MockTaskService) {},
			expectedCode: http.StatusUnsupportedMediaType,
		},
		{
			name:         "error - malformed json",
			contentType:  "application/json",
			body:         `{name:`,
			setupMock:    func(m *MockTaskService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "error - empty name",
			contentType:  "application/json",
			body:         `{"due_date":"2026-09-15"}`,
			setupMock:    func(m *MockTaskService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "error - bad due date",
			contentType:  "application/json",
			body:         `{"name":"Pay bills","due_date":"tomorrow"}`,
			setupMock:    func(m *MockTaskService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:        "error - unauthenticated maps to 401",
			contentType: "application/json",
			body:        `{"name":"Pay bills","due_date":"2026-09-15"}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewOperationError(service.KindAuth, "пользователь не аутентифицирован", nil))
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:        "error - remote failure maps to 502",
			contentType: "application/json",
			body:        `{"name":"Pay bills","due_date":"2026-09-15"}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewOperationError(service.KindCreate, "не удалось создать задачу", nil))
			},
			expectedCode: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTaskService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

// TestUpdateTaskByID тестирует частичное обновление
func TestUpdateTaskByID(t *testing.T) {
	taskID := uuid.New()

	t.Run("success - status updated", func(t *testing.T) {
		updated := sampleTask("Pay bills", task.StatusCompleted)
		updated.ID = taskID

		svc := new(MockTaskService)
		svc.On("UpdateTask", mock.Anything, taskID, mock.MatchedBy(func(p task.Patch) bool {
			return p.Status != nil && *p.Status == task.StatusCompleted && p.Name == nil
		})).Return(updated, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String(),
			bytes.NewBufferString(`{"status":"COMPLETED"}`))
		newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("error - malformed id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/not-a-uuid",
			bytes.NewBufferString(`{"status":"COMPLETED"}`))
		newRouter(new(MockTaskService), new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - unknown id maps to 404", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("UpdateTask", mock.Anything, taskID, mock.Anything).
			Return(nil, service.NewNotFound(taskID.String()))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String(),
			bytes.NewBufferString(`{"status":"COMPLETED"}`))
		newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestDeleteTaskByID тестирует удаление
func TestDeleteTaskByID(t *testing.T) {
	taskID := uuid.New()

	svc := new(MockTaskService)
	svc.On("DeleteTask", mock.Anything, taskID).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+taskID.String(), nil)
	newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

// TestToggleSelection тестирует выбор задачи
func TestToggleSelection(t *testing.T) {
	existing := sampleTask("Pay bills", task.StatusTodo)

	t.Run("success - task toggled", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Tasks").Return([]*task.Task{existing})

		sel := new(MockSelection)
		sel.On("Toggle", mock.MatchedBy(func(t *task.Task) bool { return t.ID == existing.ID })).Return()
		sel.On("Selected").Return([]*task.Task{existing})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/selection/toggle",
			bytes.NewBufferString(`{"id":"`+existing.ID.String()+`"}`))
		newRouter(svc, sel).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		sel.AssertExpectations(t)
	})

	t.Run("error - task not in collection", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Tasks").Return([]*task.Task{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/selection/toggle",
			bytes.NewBufferString(`{"id":"`+uuid.New().String()+`"}`))
		newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestBatchStatus тестирует пакетную смену статуса
func TestBatchStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sel := new(MockSelection)
		sel.On("BatchSetStatus", mock.Anything, task.StatusCompleted).Return(nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/selection/status",
			bytes.NewBufferString(`{"status":"COMPLETED"}`))
		newRouter(new(MockTaskService), sel).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		sel.AssertExpectations(t)
	})

	t.Run("error - unknown status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/selection/status",
			bytes.NewBufferString(`{"status":"DONE"}`))
		newRouter(new(MockTaskService), new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial failure maps to 207", func(t *testing.T) {
		sel := new(MockSelection)
		sel.On("BatchSetStatus", mock.Anything, task.StatusCompleted).
			Return(assert.AnError)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/selection/status",
			bytes.NewBufferString(`{"status":"COMPLETED"}`))
		newRouter(new(MockTaskService), sel).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMultiStatus, rec.Code)
	})
}

// TestHealthCheck тестирует health endpoint
func TestHealthCheck(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("HealthCheck", mock.Anything).Return(nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("error - storage down", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("HealthCheck", mock.Anything).Return(assert.AnError)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		newRouter(svc, new(MockSelection)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
