package dto

import (
	"taskBuddy/internal/models/task"
	"taskBuddy/internal/views"
	"time"

	"github.com/google/uuid"
)

// AttachmentRequest — вложение на входе: либо уже сохранённый url, либо
// бинарные данные (base64 в JSON) с именем файла.
type AttachmentRequest struct {
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"data,omitempty"`
}

type CreateTaskRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	DueDate     string              `json:"due_date"`
	Status      string              `json:"status"`
	Category    string              `json:"category"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
}

type UpdateTaskRequest struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	DueDate     *string             `json:"due_date,omitempty"`
	Status      *string             `json:"status,omitempty"`
	Category    *string             `json:"category,omitempty"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
}

type BatchStatusRequest struct {
	Status string `json:"status"`
}

type ToggleRequest struct {
	ID uuid.UUID `json:"id"`
}

type TaskResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	DueDate     string                `json:"due_date"`
	Status      string                `json:"status"`
	Category    string                `json:"category"`
	Activity    []task.ActivityRecord `json:"activity"`
	UserID      string                `json:"userId"`
	Attachments []string              `json:"attachments"`
	IsOverdue   bool                  `json:"is_overdue"`
}

type BoardResponse struct {
	Todo       []TaskResponse `json:"TODO"`
	InProgress []TaskResponse `json:"IN-PROGRESS"`
	Completed  []TaskResponse `json:"COMPLETED"`
}

func ToAttachments(reqs []AttachmentRequest) []task.Attachment {
	if reqs == nil {
		return nil
	}
	res := make([]task.Attachment, 0, len(reqs))
	for _, r := range reqs {
		if r.URL != "" {
			res = append(res, task.ResolvedAttachment(r.URL))
			continue
		}
		res = append(res, task.PendingAttachment(r.Name, r.Data))
	}
	return res
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		DueDate:     t.DueDate.String(),
		Status:      string(t.Status),
		Category:    string(t.Category),
		Activity:    t.Activity,
		UserID:      t.UserID,
		Attachments: t.AttachmentURLs(),
		IsOverdue:   t.Status != task.StatusCompleted && t.DueDate.Before(task.DateOf(time.Now())),
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func FromBoard(b views.Board) BoardResponse {
	return BoardResponse{
		Todo:       FromTaskList(b.Todo),
		InProgress: FromTaskList(b.InProgress),
		Completed:  FromTaskList(b.Completed),
	}
}
