package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/tasklist"
	rep "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListService struct {
	lists rep.ListRepository
	tasks rep.TaskRepository
}

func NewListService(lists rep.ListRepository, tasks rep.TaskRepository) ListService {
	return ListService{
		lists: lists,
		tasks: tasks,
	}
}

func (s *ListService) GetLists(ctx context.Context, owner uuid.UUID) ([]*tasklist.TaskList, error) {
	lists, err := s.lists.GetByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение списков: %w", err)
	}
	return lists, nil
}

func (s *ListService) CreateList(ctx context.Context, owner uuid.UUID, name, description, color string) (*tasklist.TaskList, error) {
	if name == "" {
		return nil, NewValidationError("name", "пустое значение")
	}

	list := &tasklist.TaskList{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   time.Now(),
		UserID:      owner,
	}

	if err := s.lists.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("создание списка: %w", err)
	}

	return list, nil
}

func (s *ListService) UpdateList(ctx context.Context, owner, id uuid.UUID, options ...tasklist.ListOption) (*tasklist.TaskList, error) {
	list, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		opt(list)
	}

	if err := s.lists.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("обновление списка: %w", err)
	}

	return list, nil
}

// DeleteList сначала отвязывает задачи списка (list_id -> null), чтобы они
// не остались ссылаться в пустоту, и только потом удаляет сам список.
func (s *ListService) DeleteList(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, owner, id); err != nil {
		return err
	}

	if err := s.tasks.DetachList(ctx, id); err != nil {
		return fmt.Errorf("отвязка задач: %w", err)
	}

	if err := s.lists.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление списка: %w", err)
	}

	return nil
}

func (s *ListService) getOwned(ctx context.Context, owner, id uuid.UUID) (*tasklist.TaskList, error) {
	list, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Список не найден", zap.String("target_id", id.String()))
			return nil, NewNotFound("список", id.String())
		}
		return nil, fmt.Errorf("получение списка: %w", err)
	}

	if list.UserID != owner {
		logger.Warn("Service: Попытка доступа к чужому списку",
			zap.String("target_id", id.String()),
			zap.String("owner", owner.String()))
		return nil, NewForbidden("список", id.String())
	}

	return list, nil
}
