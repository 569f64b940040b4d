package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskBuddy/internal/handlers/dto"
	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/task"
	"taskBuddy/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service
	Selection   Selection
}

func NewTaskHandler(taskService Service, selection Selection) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
		Selection:   selection,
	}
}

// Login запускает интерактивный вход; неуспех оставляет нас разлогиненными.
func (s *TaskHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	u, err := s.TaskService.SignIn(r.Context())
	if err != nil {
		if !handleOperationError(w, err) {
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("uid", u.UID),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("user", u))
}

func (s *TaskHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.TaskService.SetUser(r.Context(), nil); err != nil {
		if !handleOperationError(w, err) {
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "сессия завершена"))
}

func (s *TaskHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	u := s.TaskService.CurrentUser()
	if u == nil {
		responseWithError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", u))
}

// parseFilter собирает фильтры из query-параметров: category, due, q.
func parseFilter(r *http.Request) (views.Filter, bool) {
	f := views.Filter{
		Category: task.Category(r.URL.Query().Get("category")),
		Query:    r.URL.Query().Get("q"),
	}

	due := views.DueFilter(r.URL.Query().Get("due"))
	if due != "" && !views.ValidDueFilter(due) {
		return f, false
	}
	f.Due = due
	return f, true
}

// GetTasks отдаёт коллекцию, пропущенную через категория ∧ срок ∧ поиск.
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, ok := parseFilter(r)
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "due"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение due")
		return
	}

	tasks := views.Apply(s.TaskService.Tasks(), filter, time.Now())

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("loading", s.TaskService.Loading()),
		toPayload("error", s.TaskService.LastError()),
	)
}

// GetBoard — то же разбиение по статусам, что и у списка, но в форме доски.
func (s *TaskHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, ok := parseFilter(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение due")
		return
	}

	filtered := views.Apply(s.TaskService.Tasks(), filter, time.Now())
	board := views.PartitionByStatus(filtered)

	logger.Info("HTTP_OUT: Доска получена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("board", dto.FromBoard(board)))
}

func (s *TaskHandler) RefreshTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.TaskService.FetchTasks(r.Context()); err != nil {
		if !handleOperationError(w, err) {
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(s.TaskService.Tasks())))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.Name == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "name"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	due, err := task.ParseDate(request.DueDate)
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "due_date"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "дата должна быть в формате 2006-01-02")
		return
	}

	draft := &task.Task{
		Name:        request.Name,
		Description: request.Description,
		DueDate:     due,
		Status:      task.Status(request.Status),
		Category:    task.Category(request.Category),
		Attachments: dto.ToAttachments(request.Attachments),
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")
	created, err := s.TaskService.CreateTask(r.Context(), draft)
	if err != nil {
		if !handleOperationError(w, err) {
			logger.Error("HTTP: Ошибка Service", err,
				zap.String("operation", "create_task"),
				zap.Duration("ms", time.Since(start)))
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	patch := task.Patch{
		Name:        request.Name,
		Description: request.Description,
		Attachments: dto.ToAttachments(request.Attachments),
	}
	if request.DueDate != nil {
		due, err := task.ParseDate(*request.DueDate)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "дата должна быть в формате 2006-01-02")
			return
		}
		patch.DueDate = &due
	}
	if request.Status != nil {
		status := task.Status(*request.Status)
		patch.Status = &status
	}
	if request.Category != nil {
		category := task.Category(*request.Category)
		patch.Category = &category
	}

	logger.Info("HTTP: Вызов сервиса обновления задачи")
	updated, err := s.TaskService.UpdateTask(r.Context(), id, patch)
	if err != nil {
		if !handleOperationError(w, err) {
			logger.Error("HTTP: Ошибка Service", err,
				zap.String("operation", "update_task"),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Вызов сервиса удаления задачи")
	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		if !handleOperationError(w, err) {
			logger.Error("HTTP: Ошибка Service", err,
				zap.String("operation", "delete_task"),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

// ToggleSelection добавляет задачу в выбор или убирает из него.
func (s *TaskHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	var target *task.Task
	for _, t := range s.TaskService.Tasks() {
		if t.ID == request.ID {
			target = t
			break
		}
	}
	if target == nil {
		responseWithError(w, http.StatusNotFound, "задача не найдена в коллекции")
		return
	}

	s.Selection.Toggle(target)
	responseWithJSON(w, http.StatusOK, toPayload("selected", dto.FromTaskList(s.Selection.Selected())))
}

func (s *TaskHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	responseWithJSON(w, http.StatusOK, toPayload("selected", dto.FromTaskList(s.Selection.Selected())))
}

func (s *TaskHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	s.Selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// BatchStatus переводит все выбранные задачи в новый статус, лучшее из
// возможного: частичный отказ не прерывает пакет.
func (s *TaskHandler) BatchStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.BatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	status := task.Status(request.Status)
	if !task.ValidStatus(status) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "status"),
			zap.String("received", request.Status))
		responseWithError(w, http.StatusBadRequest, "неизвестный статус")
		return
	}

	err := s.Selection.BatchSetStatus(r.Context(), status)
	if err != nil {
		// часть обновлений могла пройти, сообщаем о частичном успехе
		logger.Warn("HTTP_OUT: Пакет завершён с ошибками", zap.Error(err))
		responseWithJSON(w, http.StatusMultiStatus,
			toPayload("message", "пакет завершён с ошибками"),
			toPayload("error", err.Error()),
		)
		return
	}

	logger.Info("HTTP_OUT: Пакетная смена статуса выполнена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", "статус обновлён"))
}

func (s *TaskHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	err := s.Selection.BatchDelete(r.Context())
	if err != nil {
		logger.Warn("HTTP_OUT: Пакет завершён с ошибками", zap.Error(err))
		responseWithJSON(w, http.StatusMultiStatus,
			toPayload("message", "пакет завершён с ошибками"),
			toPayload("error", err.Error()),
		)
		return
	}

	logger.Info("HTTP_OUT: Пакетное удаление выполнено",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", "задачи удалены"))
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return uuid.Nil, false
	}

	return id, true
}
