package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB starts a disposable postgres with the schema applied.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filename))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(filepath.Join(migrationsPath, "001_create_tasks.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables wipes all engine tables.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE tasks, task_updates, idempotency_keys RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedTask inserts one task row directly and returns its id.
func SeedTask(t *testing.T, pool *pgxpool.Pool, title, assignedTo, departmentID string, deadline time.Time) string {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()
	_, err := pool.Exec(ctx, `
		INSERT INTO tasks (id, title, priority, status, assigned_to, assigned_by, department_id, deadline)
		VALUES ($1, $2, 'medium', 'todo', $3, 'mgr-1', $4, $5)
	`, id, title, assignedTo, departmentID, deadline)
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
	return id
}

// SeedTasks spreads count tasks over two departments and assignees.
func SeedTasks(t *testing.T, pool *pgxpool.Pool, count int) []string {
	t.Helper()

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dept := "dept-a"
		assignee := "emp-1"
		if i%2 == 1 {
			dept = "dept-b"
			assignee = "emp-2"
		}
		id := SeedTask(t, pool, fmt.Sprintf("Task %d", i+1), assignee, dept,
			time.Now().Add(time.Duration(i+1)*time.Hour))
		ids = append(ids, id)
	}
	return ids
}

// WaitForCondition polls until the condition holds or the timeout ends.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
