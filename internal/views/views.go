package views

import (
	"strings"
	"time"

	"taskBuddy/internal/models/task"
)

// Чистые проекции над коллекцией задач. Состояния нет, пересчёт дёшев
// относительно отрисовки, поэтому кэширование не нужно.

type DueFilter string

const DueAll DueFilter = "ALL"
const DueToday DueFilter = "TODAY"
const DueUpcoming DueFilter = "UPCOMING"
const DueOverdue DueFilter = "OVERDUE"

func ValidDueFilter(f DueFilter) bool {
	return f == DueAll || f == DueToday || f == DueUpcoming || f == DueOverdue
}

// Board — разбиение по трём стадиям. Одно и то же разбиение использует и
// список, и канбан-доска; порядок внутри корзины — порядок хранилища.
type Board struct {
	Todo       []*task.Task `json:"TODO"`
	InProgress []*task.Task `json:"IN-PROGRESS"`
	Completed  []*task.Task `json:"COMPLETED"`
}

// PartitionByStatus раскладывает задачи по корзинам статусов. Разбиение
// полное и без пересечений: статус — замкнутое перечисление.
func PartitionByStatus(tasks []*task.Task) Board {
	board := Board{
		Todo:       []*task.Task{},
		InProgress: []*task.Task{},
		Completed:  []*task.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusInProgress:
			board.InProgress = append(board.InProgress, t)
		case task.StatusCompleted:
			board.Completed = append(board.Completed, t)
		default:
			board.Todo = append(board.Todo, t)
		}
	}
	return board
}

// FilterCategory оставляет задачи выбранной категории; пустой выбор —
// тождественное преобразование.
func FilterCategory(tasks []*task.Task, category task.Category) []*task.Task {
	if category == "" {
		return tasks
	}
	res := []*task.Task{}
	for _, t := range tasks {
		if t.Category == category {
			res = append(res, t)
		}
	}
	return res
}

// FilterDue сравнивает только календарные даты: задача на сегодня попадает
// в TODAY и не попадает ни в UPCOMING, ни в OVERDUE. Три корзины вместе
// покрывают коллекцию ровно один раз.
func FilterDue(tasks []*task.Task, filter DueFilter, now time.Time) []*task.Task {
	if filter == "" || filter == DueAll {
		return tasks
	}

	today := task.DateOf(now)
	res := []*task.Task{}
	for _, t := range tasks {
		switch filter {
		case DueToday:
			if t.DueDate.Equal(today) {
				res = append(res, t)
			}
		case DueUpcoming:
			if t.DueDate.After(today) {
				res = append(res, t)
			}
		case DueOverdue:
			if t.DueDate.Before(today) {
				res = append(res, t)
			}
		}
	}
	return res
}

// Search — регистронезависимый поиск подстроки в названии.
func Search(tasks []*task.Task, query string) []*task.Task {
	if query == "" {
		return tasks
	}
	needle := strings.ToLower(query)
	res := []*task.Task{}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			res = append(res, t)
		}
	}
	return res
}

// Filter — совокупность входов фильтрации; комбинируются конъюнкцией.
type Filter struct {
	Category task.Category
	Due      DueFilter
	Query    string
}

// Apply применяет категория ∧ срок ∧ поиск ко всей коллекции, независимо
// от того, в какую корзину статуса задача попадёт после.
func Apply(tasks []*task.Task, f Filter, now time.Time) []*task.Task {
	res := FilterCategory(tasks, f.Category)
	res = FilterDue(res, f.Due, now)
	return Search(res, f.Query)
}
