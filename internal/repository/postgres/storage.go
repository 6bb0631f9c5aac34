package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"taskmanager/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationsUp = []string{
	"migrations/001_init.up.sql",
	"migrations/002_indexes.up.sql",
}

var migrationsDown = []string{
	"migrations/002_indexes.down.sql",
	"migrations/001_init.down.sql",
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	for _, name := range migrationsUp {
		sql, err := migrationFiles.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err)
			return fmt.Errorf("чтение %s: %w", name, err)
		}

		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			logger.Error("Repository: Не удалось применить миграцию", err)
			return fmt.Errorf("применение %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	for _, name := range migrationsDown {
		sql, err := migrationFiles.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err)
			return fmt.Errorf("чтение %s: %w", name, err)
		}

		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			logger.Error("Repository: Не удалось откатить миграцию", err)
			return fmt.Errorf("откат %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции откачены")
	return nil
}

// warnIfSlow пишет предупреждение, если запрос шёл дольше порога.
func warnIfSlow(start time.Time, threshold time.Duration) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", elapsed))
	}
}
