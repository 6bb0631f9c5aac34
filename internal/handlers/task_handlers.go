package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models/task"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	h.respondTasks(w, r, "HTTP_OUT: Задачи получены", h.TaskService.GetTasks)
}

func (h *TaskHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	h.respondTasks(w, r, "HTTP_OUT: Задачи на сегодня получены", h.TaskService.GetToday)
}

func (h *TaskHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	h.respondTasks(w, r, "HTTP_OUT: Предстоящие задачи получены", h.TaskService.GetUpcoming)
}

func (h *TaskHandler) GetTasksByList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	listIdParam := chi.URLParam(r, "listId")
	listID, err := uuid.Parse(listIdParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id списка",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить id списка: "+err.Error())
		return
	}

	tasks, err := h.TaskService.GetTasksByList(r.Context(), owner.ID, listID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задачи списка получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTasks(tasks))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	input := service.CreateTaskInput{
		Title:       request.Title,
		Description: request.Description,
		ListID:      request.TaskListID,
		DueDate:     request.DueDate,
	}

	if request.Priority != nil {
		priority, err := task.ParsePriority(*request.Priority)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.Priority = &priority
	}

	created, err := h.TaskService.CreateTask(r.Context(), owner.ID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
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

	var request dto.UpdateTaskRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	options := []task.TaskOption{}
	if request.Title != nil {
		options = append(options, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.Status != nil {
		status, err := task.ParseStatus(*request.Status)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		options = append(options, task.WithStatus(status, time.Now()))
	}
	if request.Priority != nil {
		priority, err := task.ParsePriority(*request.Priority)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		options = append(options, task.WithPriority(priority))
	}
	if request.DueDate != nil {
		options = append(options, task.WithDueDate(service.ParseDueDate(*request.DueDate, time.Now())))
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), owner.ID, id, options...)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.TaskService.DeleteTask(r.Context(), owner.ID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, map[string]any{"message": "задача удалена"})
}

func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	var request []dto.ReorderItem

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	orders := make([]repository.SortOrderUpdate, len(request))
	for i, item := range request {
		orders[i] = repository.SortOrderUpdate{
			TaskID:    item.ID,
			SortOrder: item.SortOrder,
		}
	}

	tasks, err := h.TaskService.Reorder(r.Context(), owner.ID, orders)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Порядок задач обновлён",
		zap.Int("count", len(orders)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTasks(tasks))
}

// общий код read-эндпоинтов без параметров
func (h *TaskHandler) respondTasks(w http.ResponseWriter, r *http.Request, outMsg string, get func(ctx context.Context, owner uuid.UUID) ([]*task.Task, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "владелец не определён")
		return
	}

	tasks, err := get(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Info(outMsg,
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTasks(tasks))
}
