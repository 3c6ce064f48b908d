package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, title, description, priority, status,
	assigned_to, assigned_to_name, assigned_by, assigned_by_name,
	department_id, deadline, estimated_hours, actual_hours, tags,
	cancel_reason, version, created_at, updated_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// row is satisfied by both pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

func scanTask(r row) (model.Task, error) {
	var t model.Task
	err := r.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.AssignedTo, &t.AssignedToName, &t.AssignedBy, &t.AssignedByName,
		&t.DepartmentID, &t.Deadline, &t.EstimatedHours, &t.ActualHours, &t.Tags,
		&t.CancelReason, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t.ID = uuid.NewString()
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, priority, status,
			assigned_to, assigned_to_name, assigned_by, assigned_by_name,
			department_id, deadline, estimated_hours, tags)
		VALUES ($1, $2, $3, $4, 'todo', $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+taskColumns+`
	`, t.ID, t.Title, t.Description, t.Priority,
		t.AssignedTo, t.AssignedToName, t.AssignedBy, t.AssignedByName,
		t.DepartmentID, t.Deadline, t.EstimatedHours, t.Tags))
	return created, r.mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	if err != nil {
		return t, err
	}

	t.Updates, err = r.listUpdates(ctx, r.pool, id)
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR priority = $2)
		  AND ($3::text IS NULL OR department_id = $3)
		  AND ($4::text IS NULL OR assigned_to = $4)
		ORDER BY created_at DESC, id DESC
	`, statusPtr(filter.Status), priorityPtr(filter.Priority), filter.DepartmentID, filter.AssignedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Transition applies the patch and appends the log entry in one
// transaction. A version mismatch (or a concurrently deleted task)
// surfaces as ErrorConflict and nothing is written.
func (r *TaskRepo) Transition(ctx context.Context, id string, version int, patch model.TaskPatch, entry model.TaskUpdate) (model.Task, error) {
	var t model.Task
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return t, err
	}
	defer tx.Rollback(ctx)

	t, err = scanTask(tx.QueryRow(ctx, `
		UPDATE tasks
		SET status = $3, actual_hours = $4, cancel_reason = $5,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+taskColumns+`
	`, id, version, patch.Status, patch.ActualHours, patch.CancelReason))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorConflict
	}
	if err != nil {
		return t, err
	}

	if err := r.appendEntry(ctx, tx, id, entry); err != nil {
		return t, err
	}
	t.Updates, err = r.listUpdates(ctx, tx, id)
	if err != nil {
		return t, err
	}
	return t, tx.Commit(ctx)
}

// AppendUpdate appends a free-text entry. The version bump keeps plain
// updates serialized with transitions on the same task.
func (r *TaskRepo) AppendUpdate(ctx context.Context, id string, version int, entry model.TaskUpdate) (model.Task, error) {
	var t model.Task
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return t, err
	}
	defer tx.Rollback(ctx)

	t, err = scanTask(tx.QueryRow(ctx, `
		UPDATE tasks
		SET version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+taskColumns+`
	`, id, version))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorConflict
	}
	if err != nil {
		return t, err
	}

	if err := r.appendEntry(ctx, tx, id, entry); err != nil {
		return t, err
	}
	t.Updates, err = r.listUpdates(ctx, tx, id)
	if err != nil {
		return t, err
	}
	return t, tx.Commit(ctx)
}

func (r *TaskRepo) Delete(ctx context.Context, id string, version int) error {
	cmd, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND version = $2
	`, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorConflict
	}
	return nil
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrorNotFound
	}
	return id, err
}

// querier covers the shared query surface of pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *TaskRepo) appendEntry(ctx context.Context, q querier, taskID string, entry model.TaskUpdate) error {
	_, err := q.Exec(ctx, `
		INSERT INTO task_updates (task_id, updated_by, message, status_change)
		VALUES ($1, $2, $3, $4)
	`, taskID, entry.UpdatedBy, entry.Message, entry.StatusChange)
	return err
}

func (r *TaskRepo) listUpdates(ctx context.Context, q querier, taskID string) ([]model.TaskUpdate, error) {
	rows, err := q.Query(ctx, `
		SELECT updated_by, message, status_change, updated_at
		FROM task_updates
		WHERE task_id = $1
		ORDER BY id
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]model.TaskUpdate, 0)
	for rows.Next() {
		var u model.TaskUpdate
		if err := rows.Scan(&u.UpdatedBy, &u.Message, &u.StatusChange, &u.UpdatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func statusPtr(s *model.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func priorityPtr(p *model.Priority) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
