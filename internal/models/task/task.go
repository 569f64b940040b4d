package task

import (
	"github.com/google/uuid"
)

type Status string
type Category string

const StatusTodo Status = "TODO"
const StatusInProgress Status = "IN-PROGRESS"
const StatusCompleted Status = "COMPLETED"

const CategoryWork Category = "Work"
const CategoryPersonal Category = "Personal"
const CategoryOther Category = "Other"

// Task — центральная сущность. ID присваивается удалённым хранилищем,
// до первой записи он равен uuid.Nil.
type Task struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	DueDate     Date             `json:"due_date"`
	Status      Status           `json:"status"`
	Category    Category         `json:"category"`
	Activity    []ActivityRecord `json:"activity"`
	UserID      string           `json:"userId"`
	Attachments []Attachment     `json:"attachments"`
}

// ActivityRecord — запись истории изменений, история только дополняется
type ActivityRecord struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusCompleted
}

// NormalizeCategory сводит произвольную метку к известным тегам.
// UI предлагает только Work и Personal, всё остальное попадает в Other.
func NormalizeCategory(c Category) Category {
	switch c {
	case CategoryWork, CategoryPersonal:
		return c
	default:
		return CategoryOther
	}
}

// Resolved сообщает, все ли вложения уже загружены в blob-хранилище.
// В удалённое хранилище задача уходит только полностью разрешённой.
func (t *Task) Resolved() bool {
	for _, a := range t.Attachments {
		if !a.Resolved() {
			return false
		}
	}
	return true
}

// AttachmentURLs — форма вложений для удалённого хранилища (только URL).
func (t *Task) AttachmentURLs() []string {
	urls := make([]string, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		urls = append(urls, a.URL)
	}
	return urls
}

// Clone возвращает глубокую копию: менеджер отдаёт наружу только копии,
// кэш остаётся в его единоличном владении.
func (t *Task) Clone() *Task {
	copied := *t
	copied.Activity = append([]ActivityRecord(nil), t.Activity...)
	copied.Attachments = append([]Attachment(nil), t.Attachments...)
	return &copied
}
