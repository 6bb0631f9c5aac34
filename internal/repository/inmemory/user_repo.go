package inmemory

import (
	"context"
	"sync"

	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.Username == userToCreate.Username || existing.Email == userToCreate.Email {
			return repo.ErrDuplicate
		}
	}

	s.storage[userToCreate.ID] = userToCreate
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return userToGet, nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, existing := range s.storage {
		if existing.Username == username {
			return existing, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, existing := range s.storage {
		if existing.Email == email {
			return existing, nil
		}
	}
	return nil, repo.ErrNotFound
}
