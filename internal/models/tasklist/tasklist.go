package tasklist

import (
	"time"

	"github.com/google/uuid"
)

type TaskList struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Color       string     `json:"color" db:"color"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	UserID      uuid.UUID  `json:"-" db:"user_id"`
}

type ListOption func(*TaskList)

func WithName(name string) ListOption {
	return func(list *TaskList) {
		list.Name = name
	}
}

func WithDescription(description string) ListOption {
	return func(list *TaskList) {
		list.Description = description
	}
}

func WithColor(color string) ListOption {
	return func(list *TaskList) {
		list.Color = color
	}
}
