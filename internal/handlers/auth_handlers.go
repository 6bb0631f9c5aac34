package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
	Health      HealthChecker
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

func NewAuthHandler(authService AuthService, health HealthChecker) AuthHandler {
	return AuthHandler{
		AuthService: authService,
		Health:      health,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	token, newUser, err := h.AuthService.Signup(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", newUser.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.FromUser(newUser),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	token, existing, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Пользователь вошёл",
		zap.String("user_id", existing.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.FromUser(existing),
	})
}

// Me отдаёт владельца текущего токена. Владельца уже разрешил Authenticate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromUser(owner))
}

func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Health.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
