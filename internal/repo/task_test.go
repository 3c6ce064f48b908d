// internal/repo/task_test.go
package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}

	pool.Exec(context.Background(), "TRUNCATE tasks, task_updates, idempotency_keys CASCADE")

	return pool
}

func seedTask(t *testing.T, repo *TaskRepo) model.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), model.Task{
		Title:        "Review onboarding checklist",
		Priority:     model.PriorityMedium,
		AssignedTo:   "emp-1",
		AssignedBy:   "mgr-1",
		DepartmentID: "dept-a",
		Deadline:     time.Now().Add(48 * time.Hour),
		Tags:         []string{"onboarding"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewTaskRepo(pool)
	created := seedTask(t, repo)

	if created.ID == "" {
		t.Error("expected non-empty ID")
	}
	if created.Status != model.StatusTodo {
		t.Errorf("expected status=todo, got %s", created.Status)
	}
	if created.Version != 1 {
		t.Errorf("expected version=1, got %d", created.Version)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != created.Title {
		t.Errorf("expected title %q, got %q", created.Title, got.Title)
	}
	if len(got.Updates) != 0 {
		t.Errorf("expected empty activity log, got %d entries", len(got.Updates))
	}
}

func TestTaskRepo_TransitionAppendsLog(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewTaskRepo(pool)
	created := seedTask(t, repo)

	updated, err := repo.Transition(context.Background(), created.ID, created.Version,
		model.TaskPatch{Status: model.StatusInProgress},
		model.TaskUpdate{UpdatedBy: "emp-1", Message: "picking this up", StatusChange: "todo → in_progress"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("expected in_progress, got %s", updated.Status)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("expected version bump, got %d", updated.Version)
	}
	if len(updated.Updates) != 1 || updated.Updates[0].StatusChange != "todo → in_progress" {
		t.Errorf("expected one status-change entry, got %+v", updated.Updates)
	}
}

func TestTaskRepo_TransitionStaleVersion(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewTaskRepo(pool)
	created := seedTask(t, repo)

	_, err := repo.Transition(context.Background(), created.ID, created.Version,
		model.TaskPatch{Status: model.StatusInProgress},
		model.TaskUpdate{UpdatedBy: "emp-1", Message: "first", StatusChange: "todo → in_progress"},
	)
	if err != nil {
		t.Fatal(err)
	}

	// Same version again must lose and leave no extra log entry.
	_, err = repo.Transition(context.Background(), created.ID, created.Version,
		model.TaskPatch{Status: model.StatusInProgress},
		model.TaskUpdate{UpdatedBy: "emp-2", Message: "second", StatusChange: "todo → in_progress"},
	)
	if !errors.Is(err, ErrorConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Updates) != 1 {
		t.Errorf("expected exactly one log entry, got %d", len(got.Updates))
	}
}

func TestTaskRepo_AppendUpdateKeepsOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewTaskRepo(pool)
	created := seedTask(t, repo)

	first, err := repo.AppendUpdate(context.Background(), created.ID, created.Version,
		model.TaskUpdate{UpdatedBy: "emp-1", Message: "first note"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.AppendUpdate(context.Background(), created.ID, first.Version,
		model.TaskUpdate{UpdatedBy: "emp-1", Message: "second note"})
	if err != nil {
		t.Fatal(err)
	}

	if len(second.Updates) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(second.Updates))
	}
	if second.Updates[0].Message != "first note" || second.Updates[1].Message != "second note" {
		t.Errorf("log out of order: %+v", second.Updates)
	}
}

func TestTaskRepo_DeleteStaleVersion(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewTaskRepo(pool)
	created := seedTask(t, repo)

	if err := repo.Delete(context.Background(), created.ID, created.Version+5); !errors.Is(err, ErrorConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}
	if err := repo.Delete(context.Background(), created.ID, created.Version); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get(context.Background(), created.ID); !errors.Is(err, ErrorNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
