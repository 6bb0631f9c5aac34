package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	rep "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService struct {
	tasks rep.TaskRepository
	lists rep.ListRepository
}

func NewTaskService(tasks rep.TaskRepository, lists rep.ListRepository) TaskService {
	return TaskService{
		tasks: tasks,
		lists: lists,
	}
}

// CreateTaskInput - поля запроса на создание. Указатели различают
// "поле не передано" и "поле передано пустым".
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    *task.Priority
	ListID      *uuid.UUID
	DueDate     *string
}

func (s *TaskService) GetTasks(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.tasks.GetByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTasksByList(ctx context.Context, owner, listID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.tasks.GetByUserAndList(ctx, owner, listID)
	if err != nil {
		return nil, fmt.Errorf("получение задач списка: %w", err)
	}
	return tasks, nil
}

// GetToday - задачи с дедлайном внутри текущих суток включительно.
// Окно пересчитывается на каждый вызов от текущего времени.
func (s *TaskService) GetToday(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	now := time.Now()
	tasks, err := s.tasks.GetDueBetween(ctx, owner, StartOfDay(now), EndOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("получение задач на сегодня: %w", err)
	}
	return tasks, nil
}

// GetUpcoming - всё, что со старта завтрашнего дня и дальше, без верхней
// границы.
func (s *TaskService) GetUpcoming(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	tomorrow := StartOfDay(time.Now()).AddDate(0, 0, 1)
	tasks, err := s.tasks.GetDueAfter(ctx, owner, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("получение предстоящих задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner uuid.UUID, input CreateTaskInput) (*task.Task, error) {
	now := time.Now()

	newTask := &task.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      task.StatusPending,
		Priority:    task.PriorityMedium,
		CreatedAt:   now,
		UserID:      owner,
	}

	if input.Priority != nil {
		newTask.Priority = *input.Priority
	}

	if input.ListID != nil {
		list, err := s.lists.GetByID(ctx, *input.ListID)
		if err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				return nil, NewNotFound("список", input.ListID.String())
			}
			return nil, fmt.Errorf("получение списка: %w", err)
		}
		if list.UserID != owner {
			logger.Warn("Service: Попытка привязать задачу к чужому списку",
				zap.String("list_id", input.ListID.String()),
				zap.String("owner", owner.String()))
			return nil, NewForbidden("список", input.ListID.String())
		}
		newTask.ListID = input.ListID
	}

	if input.DueDate != nil {
		newTask.DueDate = ParseDueDate(*input.DueDate, now)
	} else {
		newTask.DueDate = DefaultDueDate(now)
	}

	// append-в-конец: позиция равна числу текущих задач владельца
	count, err := s.tasks.CountByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("подсчёт задач: %w", err)
	}
	newTask.SortOrder = count

	if err := s.tasks.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	return newTask, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	existing, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		opt(existing)
	}

	if err := s.tasks.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	return existing, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, owner, id); err != nil {
		return err
	}

	// sort_order оставшихся задач не уплотняется, дыры допустимы
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}

	return nil
}

// Reorder применяет батч целиком: сначала проверяются все id и владелец,
// запись идёт одной операцией. Возвращает полный список задач владельца в
// итоговом порядке.
func (s *TaskService) Reorder(ctx context.Context, owner uuid.UUID, orders []rep.SortOrderUpdate) ([]*task.Task, error) {
	for _, order := range orders {
		if _, err := s.getOwned(ctx, owner, order.TaskID); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.ApplySortOrders(ctx, orders); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", "")
		}
		return nil, fmt.Errorf("применение порядка: %w", err)
	}

	tasks, err := s.tasks.GetByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) getOwned(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	existing, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if existing.UserID != owner {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.String("target_id", id.String()),
			zap.String("owner", owner.String()))
		return nil, NewForbidden("задача", id.String())
	}

	return existing, nil
}
