package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[taskToCreate.ID] = taskToCreate
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	s.storage[taskToUpdate.ID] = taskToUpdate
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet, nil
}

// задачи владельца по возрастанию sort_order, при равенстве - порядок вставки
func (s *TaskStorage) GetByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.collect(func(t *task.Task) bool {
		return t.UserID == userID
	}), nil
}

func (s *TaskStorage) GetByUserAndList(ctx context.Context, userID, listID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.collect(func(t *task.Task) bool {
		return t.UserID == userID && t.ListID != nil && *t.ListID == listID
	}), nil
}

func (s *TaskStorage) GetDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.collect(func(t *task.Task) bool {
		return t.UserID == userID && !t.DueDate.Before(from) && !t.DueDate.After(to)
	}), nil
}

func (s *TaskStorage) GetDueAfter(ctx context.Context, userID uuid.UUID, after time.Time) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.collect(func(t *task.Task) bool {
		return t.UserID == userID && !t.DueDate.Before(after)
	}), nil
}

func (s *TaskStorage) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, t := range s.storage {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// батч применяется целиком: сначала проверяем все id, потом пишем
func (s *TaskStorage) ApplySortOrders(ctx context.Context, orders []repo.SortOrderUpdate) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, order := range orders {
		if _, ok := s.storage[order.TaskID]; !ok {
			return repo.ErrNotFound
		}
	}

	for _, order := range orders {
		s.storage[order.TaskID].SortOrder = order.SortOrder
	}
	return nil
}

func (s *TaskStorage) DetachList(ctx context.Context, listID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.storage {
		if t.ListID != nil && *t.ListID == listID {
			t.ListID = nil
		}
	}
	return nil
}

// обход в порядке вставки + устойчивая сортировка, вызывать под RLock
func (s *TaskStorage) collect(match func(*task.Task) bool) []*task.Task {
	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if match(t) {
			res = append(res, t)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].SortOrder < res[j].SortOrder
	})

	return res
}
