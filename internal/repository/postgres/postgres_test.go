package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	"taskmanager/internal/models/tasklist"
	"taskmanager/internal/models/user"
	"taskmanager/internal/repository"
	"taskmanager/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// PostgresTestSuite - интеграционные тесты против настоящего PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb", host, port.Port())

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{URL: s.connString})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.storage.Migrate(s.ctx))
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает все таблицы, каждый тест начинает с пустой базы
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks, task_lists, users CASCADE")
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) createUser(username string) *user.User {
	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$12$fake-hash-for-tests",
		CreatedAt:    time.Now(),
	}
	require.NoError(s.T(), s.storage.Users().Create(s.ctx, u))
	return u
}

func (s *PostgresTestSuite) createTask(owner uuid.UUID, title string, sortOrder int, due time.Time) *task.Task {
	t := &task.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    task.StatusPending,
		Priority:  task.PriorityMedium,
		DueDate:   due,
		SortOrder: sortOrder,
		CreatedAt: time.Now(),
		UserID:    owner,
	}
	require.NoError(s.T(), s.storage.Tasks().Create(s.ctx, t))
	return t
}

func (s *PostgresTestSuite) TestUsers_CreateAndLookup() {
	created := s.createUser("alice")

	byID, err := s.storage.Users().GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice", byID.Username)

	byName, err := s.storage.Users().GetByUsername(s.ctx, "alice")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byName.ID)

	byEmail, err := s.storage.Users().GetByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byEmail.ID)

	_, err = s.storage.Users().GetByUsername(s.ctx, "ghost")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestUsers_UniqueConstraints() {
	s.createUser("alice")

	dup := &user.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	err := s.storage.Users().Create(s.ctx, dup)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicate)
}

func (s *PostgresTestSuite) TestLists_CRUD() {
	owner := s.createUser("alice")

	list := &tasklist.TaskList{
		ID:        uuid.New(),
		Name:      "Работа",
		Color:     "#ff0000",
		CreatedAt: time.Now(),
		UserID:    owner.ID,
	}
	require.NoError(s.T(), s.storage.Lists().Create(s.ctx, list))

	retrieved, err := s.storage.Lists().GetByID(s.ctx, list.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Работа", retrieved.Name)
	assert.Equal(s.T(), owner.ID, retrieved.UserID)

	retrieved.Name = "Дом"
	now := time.Now()
	retrieved.UpdatedAt = &now
	require.NoError(s.T(), s.storage.Lists().Update(s.ctx, retrieved))

	updated, err := s.storage.Lists().GetByID(s.ctx, list.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Дом", updated.Name)
	assert.NotNil(s.T(), updated.UpdatedAt)

	require.NoError(s.T(), s.storage.Lists().Delete(s.ctx, list.ID))

	_, err = s.storage.Lists().GetByID(s.ctx, list.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTasks_OrderingByUser() {
	owner := s.createUser("alice")
	stranger := s.createUser("bob")

	due := time.Now().Add(time.Hour)
	second := s.createTask(owner.ID, "вторая", 1, due)
	first := s.createTask(owner.ID, "первая", 0, due)
	s.createTask(stranger.ID, "чужая", 0, due)

	got, err := s.storage.Tasks().GetByUser(s.ctx, owner.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)

	assert.Equal(s.T(), first.ID, got[0].ID)
	assert.Equal(s.T(), second.ID, got[1].ID)
}

func (s *PostgresTestSuite) TestTasks_GetByUserAndList() {
	owner := s.createUser("alice")

	list := &tasklist.TaskList{ID: uuid.New(), Name: "Работа", CreatedAt: time.Now(), UserID: owner.ID}
	require.NoError(s.T(), s.storage.Lists().Create(s.ctx, list))

	attached := s.createTask(owner.ID, "в списке", 0, time.Now().Add(time.Hour))
	attached.ListID = &list.ID
	require.NoError(s.T(), s.storage.Tasks().Update(s.ctx, attached))

	s.createTask(owner.ID, "вне списка", 1, time.Now().Add(time.Hour))

	got, err := s.storage.Tasks().GetByUserAndList(s.ctx, owner.ID, list.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), attached.ID, got[0].ID)
}

func (s *PostgresTestSuite) TestTasks_DueWindows() {
	owner := s.createUser("alice")
	now := time.Now()

	s.createTask(owner.ID, "вчера", 0, now.Add(-24*time.Hour))
	today := s.createTask(owner.ID, "сегодня", 1, now)
	future := s.createTask(owner.ID, "потом", 2, now.Add(72*time.Hour))

	between, err := s.storage.Tasks().GetDueBetween(s.ctx, owner.ID, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(s.T(), err)
	require.Len(s.T(), between, 1)
	assert.Equal(s.T(), today.ID, between[0].ID)

	after, err := s.storage.Tasks().GetDueAfter(s.ctx, owner.ID, now.Add(time.Hour))
	require.NoError(s.T(), err)
	require.Len(s.T(), after, 1)
	assert.Equal(s.T(), future.ID, after[0].ID)
}

func (s *PostgresTestSuite) TestTasks_UpdateStatusAndCompletedAt() {
	owner := s.createUser("alice")
	created := s.createTask(owner.ID, "доделать", 0, time.Now().Add(time.Hour))

	now := time.Now()
	created.Status = task.StatusCompleted
	created.CompletedAt = &now
	require.NoError(s.T(), s.storage.Tasks().Update(s.ctx, created))

	retrieved, err := s.storage.Tasks().GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.StatusCompleted, retrieved.Status)
	require.NotNil(s.T(), retrieved.CompletedAt)

	retrieved.Status = task.StatusPending
	retrieved.CompletedAt = nil
	require.NoError(s.T(), s.storage.Tasks().Update(s.ctx, retrieved))

	reverted, err := s.storage.Tasks().GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), reverted.CompletedAt)
}

func (s *PostgresTestSuite) TestTasks_ApplySortOrders() {
	owner := s.createUser("alice")
	due := time.Now().Add(time.Hour)

	a := s.createTask(owner.ID, "a", 0, due)
	b := s.createTask(owner.ID, "b", 1, due)

	require.NoError(s.T(), s.storage.Tasks().ApplySortOrders(s.ctx, []repository.SortOrderUpdate{
		{TaskID: a.ID, SortOrder: 1},
		{TaskID: b.ID, SortOrder: 0},
	}))

	got, err := s.storage.Tasks().GetByUser(s.ctx, owner.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), b.ID, got[0].ID)
	assert.Equal(s.T(), a.ID, got[1].ID)
}

// Батч с неизвестным id откатывается целиком
func (s *PostgresTestSuite) TestTasks_ApplySortOrders_Atomic() {
	owner := s.createUser("alice")
	a := s.createTask(owner.ID, "a", 0, time.Now().Add(time.Hour))

	err := s.storage.Tasks().ApplySortOrders(s.ctx, []repository.SortOrderUpdate{
		{TaskID: a.ID, SortOrder: 5},
		{TaskID: uuid.New(), SortOrder: 6},
	})
	require.ErrorIs(s.T(), err, repository.ErrNotFound)

	got, err := s.storage.Tasks().GetByID(s.ctx, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, got.SortOrder)
}

func (s *PostgresTestSuite) TestTasks_DetachList() {
	owner := s.createUser("alice")

	list := &tasklist.TaskList{ID: uuid.New(), Name: "Работа", CreatedAt: time.Now(), UserID: owner.ID}
	require.NoError(s.T(), s.storage.Lists().Create(s.ctx, list))

	attached := s.createTask(owner.ID, "в списке", 0, time.Now().Add(time.Hour))
	attached.ListID = &list.ID
	require.NoError(s.T(), s.storage.Tasks().Update(s.ctx, attached))

	require.NoError(s.T(), s.storage.Tasks().DetachList(s.ctx, list.ID))

	got, err := s.storage.Tasks().GetByID(s.ctx, attached.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.ListID)
}

func (s *PostgresTestSuite) TestTasks_CountAndDelete() {
	owner := s.createUser("alice")
	created := s.createTask(owner.ID, "одна", 0, time.Now().Add(time.Hour))

	count, err := s.storage.Tasks().CountByUser(s.ctx, owner.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)

	require.NoError(s.T(), s.storage.Tasks().Delete(s.ctx, created.ID))
	assert.ErrorIs(s.T(), s.storage.Tasks().Delete(s.ctx, created.ID), repository.ErrNotFound)

	count, err = s.storage.Tasks().CountByUser(s.ctx, owner.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, count)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	require.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func TestStorage_New_BadConnString(t *testing.T) {
	_, err := postgres.New(context.Background(), config.DatabaseConfig{URL: "not-a-url"})
	assert.Error(t, err)
}
