package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models/tasklist"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListHandler struct {
	ListService ListService
}

func NewListHandler(listService ListService) ListHandler {
	return ListHandler{
		ListService: listService,
	}
}

func (h *ListHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	lists, err := h.ListService.GetLists(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Списки получены",
		zap.Int("count", len(lists)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromLists(lists))
}

func (h *ListHandler) PostList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	var request dto.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	list, err := h.ListService.CreateList(r.Context(), owner.ID, request.Name, request.Description, request.Color)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Список создан",
		zap.String("list_id", list.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromList(list))
}

func (h *ListHandler) UpdateListByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateListRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	// опция строится только для полей, пришедших в запросе:
	// пустая строка в запросе - это явная очистка поля
	options := []tasklist.ListOption{}
	if request.Name != nil {
		options = append(options, tasklist.WithName(*request.Name))
	}
	if request.Description != nil {
		options = append(options, tasklist.WithDescription(*request.Description))
	}
	if request.Color != nil {
		options = append(options, tasklist.WithColor(*request.Color))
	}

	list, err := h.ListService.UpdateList(r.Context(), owner.ID, id, options...)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Список обновлён",
		zap.String("list_id", list.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromList(list))
}

func (h *ListHandler) DeleteListByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.ListService.DeleteList(r.Context(), owner.ID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Список удалён",
		zap.String("list_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, map[string]any{"message": "список удалён"})
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return uuid.Nil, false
	}

	return id, true
}
