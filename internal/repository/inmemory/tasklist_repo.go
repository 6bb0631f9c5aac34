package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskmanager/internal/models/tasklist"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

type ListStorage struct {
	storage map[uuid.UUID]*tasklist.TaskList
	mtx     *sync.RWMutex
}

func NewListStorage() *ListStorage {
	return &ListStorage{
		storage: make(map[uuid.UUID]*tasklist.TaskList),
		mtx:     &sync.RWMutex{},
	}
}

func (s *ListStorage) Create(ctx context.Context, listToCreate *tasklist.TaskList) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[listToCreate.ID] = listToCreate
	return nil
}

func (s *ListStorage) Update(ctx context.Context, listToUpdate *tasklist.TaskList) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[listToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	now := time.Now()
	listToUpdate.UpdatedAt = &now
	s.storage[listToUpdate.ID] = listToUpdate
	return nil
}

func (s *ListStorage) GetByID(ctx context.Context, id uuid.UUID) (*tasklist.TaskList, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	listToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return listToGet, nil
}

// новые списки первыми
func (s *ListStorage) GetByUser(ctx context.Context, userID uuid.UUID) ([]*tasklist.TaskList, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*tasklist.TaskList{}
	for _, list := range s.storage {
		if list.UserID == userID {
			res = append(res, list)
		}
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}

func (s *ListStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	return nil
}
