package service

import (
	"time"

	"taskmanager/internal/logger"

	"go.uber.org/zap"
)

// Формат без зоны трактуется как локальное время сервера.
const localLayout = "2006-01-02T15:04:05"

// ParseDueDate принимает ISO-8601 с зоной (суффикс Z или смещение) и
// локальную форму без зоны. Непригодная строка не считается ошибкой:
// задача получает дедлайн "конец текущего дня". Это единственное место,
// где ошибка гасится молча, поведение задокументировано.
func ParseDueDate(raw string, now time.Time) time.Time {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed.Local()
	}

	if parsed, err := time.ParseInLocation(localLayout, raw, now.Location()); err == nil {
		return parsed
	}

	logger.Warn("Service: Не удалось разобрать дедлайн, берём конец дня",
		zap.String("due_date", raw))
	return EndOfDay(now)
}

// DefaultDueDate - дедлайн задачи, созданной вообще без поля dueDate:
// 18:00 текущего дня.
func DefaultDueDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
}

func StartOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func EndOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
}
