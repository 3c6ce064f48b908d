package repo

import (
	"context"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

// TaskRepository is the storage boundary of the engine. Transition,
// AppendUpdate and Delete are version-guarded: a stale version fails
// with ErrorConflict and leaves the row untouched.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Transition(ctx context.Context, id string, version int, patch model.TaskPatch, entry model.TaskUpdate) (model.Task, error)
	AppendUpdate(ctx context.Context, id string, version int, entry model.TaskUpdate) (model.Task, error)
	Delete(ctx context.Context, id string, version int) error
	SaveIdempotencyKey(ctx context.Context, key string, resourceID string) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
}
