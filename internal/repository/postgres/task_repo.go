package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func (s *Storage) Tasks() *TaskRepo {
	return &TaskRepo{pool: s.pool}
}

const taskColumns = `id,
				title,
				description,
				status,
				priority,
				due_date,
				sort_order,
				created_at,
				completed_at,
				user_id,
				list_id`

func (r *TaskRepo) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, title, description, status, priority, due_date, sort_order, created_at, completed_at, user_id, list_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
		taskToCreate.SortOrder,
		time.Now(),
		taskToCreate.CompletedAt,
		taskToCreate.UserID,
		taskToCreate.ListID,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond)
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				due_date = $5,
				sort_order = $6,
				completed_at = $7,
				list_id = $8
			WHERE id = $9
			RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.DueDate,
		taskToUpdate.SortOrder,
		taskToUpdate.CompletedAt,
		taskToUpdate.ListID,
		taskToUpdate.ID,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1`

	t := &task.Task{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.SortOrder,
		&t.CreatedAt,
		&t.CompletedAt,
		&t.UserID,
		&t.ListID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return t, nil
}

// задачи владельца по возрастанию sort_order
func (r *TaskRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1
				ORDER BY sort_order ASC, created_at ASC`

	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepo) GetByUserAndList(ctx context.Context, userID, listID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND list_id = $2
				ORDER BY sort_order ASC, created_at ASC`

	return r.queryTasks(ctx, query, userID, listID)
}

func (r *TaskRepo) GetDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3
				ORDER BY sort_order ASC, created_at ASC`

	return r.queryTasks(ctx, query, userID, from, to)
}

func (r *TaskRepo) GetDueAfter(ctx context.Context, userID uuid.UUID, after time.Time) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND due_date >= $2
				ORDER BY sort_order ASC, created_at ASC`

	return r.queryTasks(ctx, query, userID, after)
}

func (r *TaskRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return 0, fmt.Errorf("подсчёт задач: %w", err)
	}
	return count, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

// батч sort_order одной транзакцией: либо все записи, либо ни одной
func (r *TaskRepo) ApplySortOrders(ctx context.Context, orders []repo.SortOrderUpdate) error {
	start := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE tasks SET sort_order = $1 WHERE id = $2`

	for _, order := range orders {
		tag, err := tx.Exec(ctx, query, order.SortOrder, order.TaskID)
		if err != nil {
			logger.Error("Repository: Не удалось обновить sort_order", err,
				zap.String("task_id", order.TaskID.String()))
			return fmt.Errorf("обновление sort_order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond+10*time.Millisecond*time.Duration(len(orders)))
	return nil
}

// отвязка задач от удаляемого списка
func (r *TaskRepo) DetachList(ctx context.Context, listID uuid.UUID) error {
	start := time.Now()

	query := `UPDATE tasks SET list_id = NULL WHERE list_id = $1`

	if _, err := r.pool.Exec(ctx, query, listID); err != nil {
		logger.Error("Repository: Не удалось отвязать задачи от списка", err)
		return fmt.Errorf("отвязка задач: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

func (r *TaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}

		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.DueDate,
			&t.SortOrder,
			&t.CreatedAt,
			&t.CompletedAt,
			&t.UserID,
			&t.ListID,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return tasks, nil
}
