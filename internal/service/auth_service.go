package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	rep "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users  rep.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
}

func NewAuthService(users rep.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager) AuthService {
	return AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (string, *user.User, error) {
	if username == "" {
		return "", nil, NewValidationError("username", "пустое значение")
	}
	if email == "" {
		return "", nil, NewValidationError("email", "пустое значение")
	}
	if password == "" {
		return "", nil, NewValidationError("password", "пустое значение")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		logger.Info("Service: Имя пользователя занято", zap.String("username", username))
		return "", nil, NewDuplicate("username")
	} else if !errors.Is(err, rep.ErrNotFound) {
		return "", nil, fmt.Errorf("проверка имени пользователя: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		logger.Info("Service: Email занят", zap.String("email", email))
		return "", nil, NewDuplicate("email")
	} else if !errors.Is(err, rep.ErrNotFound) {
		return "", nil, fmt.Errorf("проверка email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, rep.ErrDuplicate) {
			return "", nil, NewDuplicate("username")
		}
		return "", nil, fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.tokens.Generate(newUser.ID, newUser.Username)
	if err != nil {
		return "", nil, fmt.Errorf("выпуск токена: %w", err)
	}

	return token, newUser, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return "", nil, NewInvalidCredentials()
		}
		return "", nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if !s.hasher.Verify(password, existing.PasswordHash) {
		logger.Info("Service: Неверный пароль", zap.String("username", username))
		return "", nil, NewInvalidCredentials()
	}

	token, err := s.tokens.Generate(existing.ID, existing.Username)
	if err != nil {
		return "", nil, fmt.Errorf("выпуск токена: %w", err)
	}

	return token, existing, nil
}

// Resolve превращает bearer-токен во владельца. Вызывается один раз на
// запрос, дальше все операции получают готовый идентификатор.
func (s *AuthService) Resolve(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, NewUnauthenticated(err.Error())
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, NewUnauthenticated("некорректный идентификатор в токене")
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewUnauthenticated("пользователь не существует")
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	return existing, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("пользователь", id.String())
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return existing, nil
}
