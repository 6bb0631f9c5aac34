package handlers

import (
	"errors"
	"net/http"

	"taskmanager/internal/logger"
	"taskmanager/internal/service"

	"go.uber.org/zap"
)

// handleServiceError переводит ошибку сервиса в HTTP-ответ. Бизнес-ошибки
// отдаются с машинным кодом и сообщением, всё остальное прячется за 500.
func handleServiceError(w http.ResponseWriter, err error) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode, map[string]any{
			"error":   businessErr.Code,
			"message": businessErr.Message,
			"details": businessErr.Details,
		})
		return
	}

	logger.Error("HTTP: Внутренняя ошибка", err)
	responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeValidation, service.CodeInvalidCredentials, service.CodeDuplicate:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
