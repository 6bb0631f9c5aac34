package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/tasklist"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ListRepo struct {
	pool *pgxpool.Pool
}

func (s *Storage) Lists() *ListRepo {
	return &ListRepo{pool: s.pool}
}

func (r *ListRepo) Create(ctx context.Context, listToCreate *tasklist.TaskList) error {
	start := time.Now()

	query := `INSERT INTO task_lists
				(id, name, description, color, created_at, user_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		listToCreate.ID,
		listToCreate.Name,
		listToCreate.Description,
		listToCreate.Color,
		time.Now(),
		listToCreate.UserID,
	).Scan(&listToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить список", err)
		return fmt.Errorf("добавление списка: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond)
	return nil
}

func (r *ListRepo) Update(ctx context.Context, listToUpdate *tasklist.TaskList) error {
	start := time.Now()

	query := `UPDATE task_lists
			SET name = $1,
				description = $2,
				color = $3,
				updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		listToUpdate.Name,
		listToUpdate.Description,
		listToUpdate.Color,
		listToUpdate.ID,
	).Scan(&listToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить список", err)
		return fmt.Errorf("обновление списка: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

func (r *ListRepo) GetByID(ctx context.Context, id uuid.UUID) (*tasklist.TaskList, error) {
	start := time.Now()

	query := `SELECT
				id,
				name,
				description,
				color,
				created_at,
				updated_at,
				user_id
				FROM task_lists
				WHERE id = $1`

	list := &tasklist.TaskList{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&list.ID,
		&list.Name,
		&list.Description,
		&list.Color,
		&list.CreatedAt,
		&list.UpdatedAt,
		&list.UserID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить список", err)
		return nil, fmt.Errorf("получение списка: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return list, nil
}

// списки владельца, новые первыми
func (r *ListRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]*tasklist.TaskList, error) {
	start := time.Now()

	query := `SELECT
				id,
				name,
				description,
				color,
				created_at,
				updated_at,
				user_id
				FROM task_lists
				WHERE user_id = $1
				ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		logger.Error("Repository: Не удалось получить списки", err)
		return nil, fmt.Errorf("получение списков: %w", err)
	}
	defer rows.Close()

	lists := []*tasklist.TaskList{}
	for rows.Next() {
		list := &tasklist.TaskList{}

		err := rows.Scan(
			&list.ID,
			&list.Name,
			&list.Description,
			&list.Color,
			&list.CreatedAt,
			&list.UpdatedAt,
			&list.UserID,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования списка", zap.Error(err))
			continue
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return lists, nil
}

func (r *ListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM task_lists
				WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить список", err)
		return fmt.Errorf("удаление списка: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}
