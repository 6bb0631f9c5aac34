package repository

import (
	"context"
	"errors"
	"time"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/tasklist"
	"taskmanager/internal/models/user"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("запись не найдена")
var ErrDuplicate = errors.New("запись уже существует")

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByUsername(context.Context, string) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
}

type ListRepository interface {
	Create(context.Context, *tasklist.TaskList) error
	Update(context.Context, *tasklist.TaskList) error
	GetByID(context.Context, uuid.UUID) (*tasklist.TaskList, error)
	// GetByUser возвращает списки владельца, новые первыми (created_at desc).
	GetByUser(context.Context, uuid.UUID) ([]*tasklist.TaskList, error)
	Delete(context.Context, uuid.UUID) error
}

// SortOrderUpdate - одна пара id/sort_order из батча reorder.
type SortOrderUpdate struct {
	TaskID    uuid.UUID
	SortOrder int
}

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	// GetByUser возвращает задачи владельца по возрастанию sort_order.
	GetByUser(context.Context, uuid.UUID) ([]*task.Task, error)
	GetByUserAndList(context.Context, uuid.UUID, uuid.UUID) ([]*task.Task, error)
	GetDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error)
	GetDueAfter(ctx context.Context, userID uuid.UUID, after time.Time) ([]*task.Task, error)
	CountByUser(context.Context, uuid.UUID) (int, error)
	Delete(context.Context, uuid.UUID) error
	// ApplySortOrders применяет батч целиком: либо все записи, либо ни одной.
	ApplySortOrders(context.Context, []SortOrderUpdate) error
	// DetachList отвязывает задачи от удаляемого списка (list_id -> null).
	DetachList(context.Context, uuid.UUID) error
}

type HealthChecker interface {
	HealthCheck(context.Context) error
}
