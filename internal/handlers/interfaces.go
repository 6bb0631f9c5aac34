package handlers

import (
	"context"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/tasklist"
	"taskmanager/internal/models/user"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/google/uuid"
)

type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (string, *user.User, error)
	Login(ctx context.Context, username, password string) (string, *user.User, error)
}

type ListService interface {
	GetLists(ctx context.Context, owner uuid.UUID) ([]*tasklist.TaskList, error)
	CreateList(ctx context.Context, owner uuid.UUID, name, description, color string) (*tasklist.TaskList, error)
	UpdateList(ctx context.Context, owner, id uuid.UUID, options ...tasklist.ListOption) (*tasklist.TaskList, error)
	DeleteList(ctx context.Context, owner, id uuid.UUID) error
}

type TaskService interface {
	GetTasks(ctx context.Context, owner uuid.UUID) ([]*task.Task, error)
	GetTasksByList(ctx context.Context, owner, listID uuid.UUID) ([]*task.Task, error)
	GetToday(ctx context.Context, owner uuid.UUID) ([]*task.Task, error)
	GetUpcoming(ctx context.Context, owner uuid.UUID) ([]*task.Task, error)
	CreateTask(ctx context.Context, owner uuid.UUID, input service.CreateTaskInput) (*task.Task, error)
	UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
	Reorder(ctx context.Context, owner uuid.UUID, orders []repository.SortOrderUpdate) ([]*task.Task, error)
}
