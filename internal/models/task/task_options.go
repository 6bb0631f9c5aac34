package task

import (
	"time"
)

// TaskOption - функция частичного обновления. Опция создаётся только для
// полей, которые реально пришли в запросе, поэтому "поле не передано" и
// "поле очищено" различаются на уровне набора опций.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithPriority(priority Priority) TaskOption {
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithStatus помимо статуса ведёт completed_at: переход в COMPLETED ставит
// отметку времени, возврат в PENDING сбрасывает её, IN_PROGRESS и CANCELLED
// отметку не трогают.
func WithStatus(status Status, now time.Time) TaskOption {
	return func(task *Task) {
		task.Status = status
		switch status {
		case StatusCompleted:
			task.CompletedAt = &now
		case StatusPending:
			task.CompletedAt = nil
		}
	}
}

func WithDueDate(dueDate time.Time) TaskOption {
	return func(task *Task) {
		task.DueDate = dueDate
	}
}

func WithSortOrder(sortOrder int) TaskOption {
	return func(task *Task) {
		task.SortOrder = sortOrder
	}
}
