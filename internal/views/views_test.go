package views_test

import (
	"testing"
	"time"

	"taskBuddy/internal/models/task"
	"taskBuddy/internal/views"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTask(name string, status task.Status, category task.Category, due task.Date) *task.Task {
	return &task.Task{
		ID:       uuid.New(),
		Name:     name,
		Status:   status,
		Category: category,
		DueDate:  due,
	}
}

// now фиксировано, чтобы корзины срока были детерминированы
var now = time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)

var (
	today     = task.NewDate(2026, time.September, 1)
	yesterday = task.NewDate(2026, time.August, 31)
	tomorrow  = task.NewDate(2026, time.September, 2)
)

// TestPartitionByStatus тестирует разбиение по статусам
func TestPartitionByStatus(t *testing.T) {
	todo := mkTask("Report", task.StatusTodo, task.CategoryWork, today)
	inProgress := mkTask("Prepare slides", task.StatusInProgress, task.CategoryWork, tomorrow)
	completed := mkTask("Pay bills", task.StatusCompleted, task.CategoryPersonal, yesterday)

	board := views.PartitionByStatus([]*task.Task{todo, inProgress, completed})

	require.Len(t, board.Todo, 1)
	require.Len(t, board.InProgress, 1)
	require.Len(t, board.Completed, 1)
	assert.Equal(t, todo.ID, board.Todo[0].ID)
	assert.Equal(t, inProgress.ID, board.InProgress[0].ID)
	assert.Equal(t, completed.ID, board.Completed[0].ID)

	// разбиение полное: сумма корзин равна коллекции
	total := len(board.Todo) + len(board.InProgress) + len(board.Completed)
	assert.Equal(t, 3, total)
}

func TestPartitionByStatus_Empty(t *testing.T) {
	board := views.PartitionByStatus(nil)
	assert.Empty(t, board.Todo)
	assert.Empty(t, board.InProgress)
	assert.Empty(t, board.Completed)
}

// TestFilterDue тестирует корзины срока: сравнение только по дате
func TestFilterDue(t *testing.T) {
	dueToday := mkTask("Due today", task.StatusTodo, task.CategoryWork, today)
	overdue := mkTask("Overdue", task.StatusTodo, task.CategoryWork, yesterday)
	upcoming := mkTask("Upcoming", task.StatusTodo, task.CategoryWork, tomorrow)
	all := []*task.Task{dueToday, overdue, upcoming}

	tests := []struct {
		name   string
		filter views.DueFilter
		want   []*task.Task
	}{
		{name: "today bucket", filter: views.DueToday, want: []*task.Task{dueToday}},
		{name: "overdue bucket", filter: views.DueOverdue, want: []*task.Task{overdue}},
		{name: "upcoming bucket", filter: views.DueUpcoming, want: []*task.Task{upcoming}},
		{name: "all is identity", filter: views.DueAll, want: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := views.FilterDue(all, tt.filter, now)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].ID, got[i].ID)
			}
		})
	}

	// три корзины вместе покрывают коллекцию ровно один раз
	covered := len(views.FilterDue(all, views.DueToday, now)) +
		len(views.FilterDue(all, views.DueOverdue, now)) +
		len(views.FilterDue(all, views.DueUpcoming, now))
	assert.Equal(t, len(all), covered)
}

// TestFilterDue_TimeOfDayIgnored тестирует, что время внутри дня не влияет
func TestFilterDue_TimeOfDayIgnored(t *testing.T) {
	dueToday := mkTask("Due today", task.StatusTodo, task.CategoryWork, today)
	lateEvening := time.Date(2026, time.September, 1, 23, 59, 0, 0, time.UTC)

	got := views.FilterDue([]*task.Task{dueToday}, views.DueOverdue, lateEvening)
	assert.Empty(t, got)

	got = views.FilterDue([]*task.Task{dueToday}, views.DueToday, lateEvening)
	assert.Len(t, got, 1)
}

// TestFilterCategory тестирует фильтр категории
func TestFilterCategory(t *testing.T) {
	work := mkTask("Report", task.StatusTodo, task.CategoryWork, today)
	personal := mkTask("Pay bills", task.StatusTodo, task.CategoryPersonal, today)
	all := []*task.Task{work, personal}

	got := views.FilterCategory(all, task.CategoryWork)
	require.Len(t, got, 1)
	assert.Equal(t, work.ID, got[0].ID)

	// пустой выбор — тождественное преобразование
	assert.Len(t, views.FilterCategory(all, ""), 2)
}

// TestSearch тестирует регистронезависимый поиск подстроки
func TestSearch(t *testing.T) {
	report := mkTask("Report", task.StatusTodo, task.CategoryWork, today)
	prepare := mkTask("prepare slides", task.StatusTodo, task.CategoryWork, today)
	bills := mkTask("Pay bills", task.StatusTodo, task.CategoryPersonal, today)
	all := []*task.Task{report, prepare, bills}

	got := views.Search(all, "rep")
	require.Len(t, got, 2)
	assert.Equal(t, report.ID, got[0].ID)
	assert.Equal(t, prepare.ID, got[1].ID)

	assert.Len(t, views.Search(all, ""), 3)
	assert.Empty(t, views.Search(all, "nothing"))
}

// TestApply тестирует конъюнкцию фильтров
func TestApply(t *testing.T) {
	match := mkTask("Quarterly report", task.StatusTodo, task.CategoryWork, tomorrow)
	wrongCategory := mkTask("Report taxes", task.StatusTodo, task.CategoryPersonal, tomorrow)
	wrongDue := mkTask("Report draft", task.StatusTodo, task.CategoryWork, yesterday)
	wrongName := mkTask("Walk the dog", task.StatusTodo, task.CategoryWork, tomorrow)

	got := views.Apply(
		[]*task.Task{match, wrongCategory, wrongDue, wrongName},
		views.Filter{Category: task.CategoryWork, Due: views.DueUpcoming, Query: "report"},
		now,
	)

	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
}

func TestValidDueFilter(t *testing.T) {
	assert.True(t, views.ValidDueFilter(views.DueAll))
	assert.True(t, views.ValidDueFilter(views.DueOverdue))
	assert.False(t, views.ValidDueFilter(views.DueFilter("SOMEDAY")))
}
