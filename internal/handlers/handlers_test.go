package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"taskmanager/internal/handlers"
	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models/task"
	"taskmanager/internal/models/tasklist"
	"taskmanager/internal/models/user"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

const testToken = "valid-token"

// staticResolver подменяет разбор JWT: один известный токен - один владелец.
type staticResolver struct {
	owner *user.User
}

func (r *staticResolver) Resolve(ctx context.Context, token string) (*user.User, error) {
	if token != testToken {
		return nil, service.NewUnauthenticated("недействительный токен")
	}
	return r.owner, nil
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

type MockListService struct {
	mock.Mock
}

func (m *MockListService) GetLists(ctx context.Context, owner uuid.UUID) ([]*tasklist.TaskList, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasklist.TaskList), args.Error(1)
}

func (m *MockListService) CreateList(ctx context.Context, owner uuid.UUID, name, description, color string) (*tasklist.TaskList, error) {
	args := m.Called(ctx, owner, name, description, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasklist.TaskList), args.Error(1)
}

func (m *MockListService) UpdateList(ctx context.Context, owner, id uuid.UUID, options ...tasklist.ListOption) (*tasklist.TaskList, error) {
	args := m.Called(ctx, owner, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasklist.TaskList), args.Error(1)
}

func (m *MockListService) DeleteList(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) GetTasks(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTasksByList(ctx context.Context, owner, listID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, owner, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetToday(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetUpcoming(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, owner uuid.UUID, input service.CreateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, owner, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, owner, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskService) Reorder(ctx context.Context, owner uuid.UUID, orders []repository.SortOrderUpdate) ([]*task.Task, error) {
	args := m.Called(ctx, owner, orders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

var _ handlers.AuthService = (*MockAuthService)(nil)
var _ handlers.ListService = (*MockListService)(nil)
var _ handlers.TaskService = (*MockTaskService)(nil)

type healthOK struct{}

func (healthOK) HealthCheck(ctx context.Context) error { return nil }

type testEnv struct {
	owner  *user.User
	auth   *MockAuthService
	lists  *MockListService
	tasks  *MockTaskService
	router chi.Router
}

// newTestEnv собирает роутер с теми же маршрутами, что и приложение,
// но с мок-сервисами и детерминированным владельцем.
func newTestEnv() *testEnv {
	env := &testEnv{
		owner: &user.User{
			ID:        uuid.New(),
			Username:  "alice",
			Email:     "alice@example.com",
			CreatedAt: time.Now(),
		},
		auth:  new(MockAuthService),
		lists: new(MockListService),
		tasks: new(MockTaskService),
	}

	authHandler := handlers.NewAuthHandler(env.auth, healthOK{})
	listHandler := handlers.NewListHandler(env.lists)
	taskHandler := handlers.NewTaskHandler(env.tasks)

	authenticate := middleware.Authenticate(&staticResolver{owner: env.owner})

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})
	r.Route("/api/lists", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", listHandler.GetLists)
		r.Post("/", listHandler.PostList)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", listHandler.UpdateListByID)
			r.Delete("/", listHandler.DeleteListByID)
		})
	})
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", taskHandler.GetTasks)
		r.Post("/", taskHandler.PostTask)
		r.Get("/today", taskHandler.GetToday)
		r.Get("/upcoming", taskHandler.GetUpcoming)
		r.Get("/list/{listId}", taskHandler.GetTasksByList)
		r.Put("/reorder", taskHandler.ReorderTasks)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", taskHandler.UpdateTaskByID)
			r.Delete("/", taskHandler.DeleteTaskByID)
		})
	})
	r.Get("/health", authHandler.HealthCheck)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	env := newTestEnv()

	t.Run("без заголовка", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/tasks/", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("не Bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("неизвестный токен", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/", nil)
		req.Header.Set("Authorization", "Bearer other")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	env.tasks.AssertNotCalled(t, "GetTasks", mock.Anything, mock.Anything)
}

func TestAuthHandler_Signup(t *testing.T) {
	env := newTestEnv()

	created := &user.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", CreatedAt: time.Now()}
	env.auth.On("Signup", mock.Anything, "bob", "bob@example.com", "pw").Return("jwt-token", created, nil)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "pw",
	}, false)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, created.ID, resp.User.ID)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv()
	env.auth.On("Login", mock.Anything, "bob", "wrong").Return("", nil, service.NewInvalidCredentials())

	rec := env.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "bob", Password: "wrong"}, false)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), service.CodeInvalidCredentials)
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/auth/me", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, env.owner.ID, resp.ID)
	assert.Equal(t, "alice", resp.Username)

	// хеш пароля наружу не сериализуется
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestTaskHandler_PostTask(t *testing.T) {
	env := newTestEnv()

	created := &task.Task{
		ID:        uuid.New(),
		Title:     "написать отчёт",
		Status:    task.StatusPending,
		Priority:  task.PriorityHigh,
		DueDate:   time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
		UserID:    env.owner.ID,
	}

	priority := "HIGH"
	env.tasks.On("CreateTask", mock.Anything, env.owner.ID, mock.MatchedBy(func(input service.CreateTaskInput) bool {
		return input.Title == "написать отчёт" && input.Priority != nil && *input.Priority == task.PriorityHigh
	})).Return(created, nil)

	rec := env.do(t, http.MethodPost, "/api/tasks/", dto.CreateTaskRequest{
		Title:    "написать отчёт",
		Priority: &priority,
	}, true)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "HIGH", resp.Priority)

	env.tasks.AssertExpectations(t)
}

func TestTaskHandler_PostTask_BadEnum(t *testing.T) {
	env := newTestEnv()

	priority := "EXTREME"
	rec := env.do(t, http.MethodPost, "/api/tasks/", dto.CreateTaskRequest{
		Title:    "x",
		Priority: &priority,
	}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_PostTask_WrongContentType(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/", bytes.NewReader([]byte("title=x")))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+testToken)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestTaskHandler_UpdateTask_BadID(t *testing.T) {
	env := newTestEnv()

	title := "новое имя"
	rec := env.do(t, http.MethodPut, "/api/tasks/not-a-uuid/", dto.UpdateTaskRequest{Title: &title}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.tasks.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_UpdateTask_ErrorMapping(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name     string
		err      error
		expected int
	}{
		{"не найдена", service.NewNotFound("задача", id.String()), http.StatusNotFound},
		{"чужая", service.NewForbidden("задача", id.String()), http.StatusForbidden},
	}

	title := "x"
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.tasks.On("UpdateTask", mock.Anything, env.owner.ID, id, mock.Anything).Return(nil, tc.err)

			rec := env.do(t, http.MethodPut, "/api/tasks/"+id.String()+"/", dto.UpdateTaskRequest{Title: &title}, true)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestTaskHandler_Reorder(t *testing.T) {
	env := newTestEnv()

	first := uuid.New()
	second := uuid.New()

	expected := []repository.SortOrderUpdate{
		{TaskID: first, SortOrder: 1},
		{TaskID: second, SortOrder: 0},
	}

	reordered := []*task.Task{
		{ID: second, SortOrder: 0, Status: task.StatusPending, Priority: task.PriorityMedium, UserID: env.owner.ID},
		{ID: first, SortOrder: 1, Status: task.StatusPending, Priority: task.PriorityMedium, UserID: env.owner.ID},
	}
	env.tasks.On("Reorder", mock.Anything, env.owner.ID, expected).Return(reordered, nil)

	rec := env.do(t, http.MethodPut, "/api/tasks/reorder", []dto.ReorderItem{
		{ID: first, SortOrder: 1},
		{ID: second, SortOrder: 0},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, second, resp[0].ID)
	assert.Equal(t, first, resp[1].ID)

	env.tasks.AssertExpectations(t)
}

func TestListHandler_Flow(t *testing.T) {
	env := newTestEnv()

	stored := &tasklist.TaskList{
		ID:        uuid.New(),
		Name:      "Работа",
		Color:     "#ff0000",
		CreatedAt: time.Now(),
		UserID:    env.owner.ID,
	}

	env.lists.On("CreateList", mock.Anything, env.owner.ID, "Работа", "", "#ff0000").Return(stored, nil)
	env.lists.On("GetLists", mock.Anything, env.owner.ID).Return([]*tasklist.TaskList{stored}, nil)
	env.lists.On("DeleteList", mock.Anything, env.owner.ID, stored.ID).Return(nil)

	rec := env.do(t, http.MethodPost, "/api/lists/", dto.CreateListRequest{Name: "Работа", Color: "#ff0000"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/lists/", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var lists []dto.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 1)
	assert.Equal(t, stored.ID, lists[0].ID)

	rec = env.do(t, http.MethodDelete, "/api/lists/"+stored.ID.String()+"/", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	env.lists.AssertExpectations(t)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
