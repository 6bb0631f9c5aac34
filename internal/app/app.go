package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/repository/inmemory"
	"taskmanager/internal/repository/postgres"
	"taskmanager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	var users repository.UserRepository
	var lists repository.ListRepository
	var tasks repository.TaskRepository
	var health handlers.HealthChecker

	switch a.config.Repository.Type {
	case "postgres":
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			return fmt.Errorf("применение миграций: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		users = storage.Users()
		lists = storage.Lists()
		tasks = storage.Tasks()
		health = storage
	default:
		taskStorage := inmemory.NewTaskStorage()
		users = inmemory.NewUserStorage()
		lists = inmemory.NewListStorage()
		tasks = taskStorage
		health = taskStorage
	}

	tokens := auth.NewTokenManager(a.config.Auth.Secret, a.config.Auth.TokenTTL, a.config.Auth.Issuer)
	hasher := auth.NewPasswordHasher()

	authService := service.NewAuthService(users, hasher, tokens)
	listService := service.NewListService(lists, tasks)
	taskService := service.NewTaskService(tasks, lists)

	authHandler := handlers.NewAuthHandler(&authService, health)
	listHandler := handlers.NewListHandler(&listService)
	taskHandler := handlers.NewTaskHandler(&taskService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))

	authenticate := middleware.Authenticate(&authService)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup) // POST /api/auth/signup
		r.Post("/login", authHandler.Login)   // POST /api/auth/login

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me) // GET /api/auth/me
		})
	})

	r.Route("/api/lists", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", listHandler.GetLists)  // GET /api/lists
		r.Post("/", listHandler.PostList) // POST /api/lists

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", listHandler.UpdateListByID)    // PUT /api/lists/{id}
			r.Delete("/", listHandler.DeleteListByID) // DELETE /api/lists/{id}
		})
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", taskHandler.GetTasks)  // GET /api/tasks
		r.Post("/", taskHandler.PostTask) // POST /api/tasks

		r.Get("/today", taskHandler.GetToday)               // GET /api/tasks/today
		r.Get("/upcoming", taskHandler.GetUpcoming)         // GET /api/tasks/upcoming
		r.Get("/list/{listId}", taskHandler.GetTasksByList) // GET /api/tasks/list/{listId}
		r.Put("/reorder", taskHandler.ReorderTasks)         // PUT /api/tasks/reorder

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /api/tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /api/tasks/{id}
		})
	})

	r.Get("/health", authHandler.HealthCheck)

	a.router = r
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: r,
	}

	return nil
}

func (a *App) Run() error {
	logger.Info("Server started", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("запуск сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}

	return err
}
