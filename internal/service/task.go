package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/repo"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/workflow"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidState = errors.New("invalid state")
)

const (
	titleMinLen       = 3
	titleMaxLen       = 150
	descriptionMaxLen = 2000
	messageMinLen     = 3
	messageMaxLen     = 500
	maxTags           = 5
	tagMaxLen         = 20
)

const defaultTransitionMessage = "Status updated"

// Directory resolves people against the external directory service.
// found=false means the id is unknown; a nil Directory on the service
// skips the checks and trusts the caller.
type Directory interface {
	Lookup(ctx context.Context, personID string) (p model.Person, found bool, err error)
}

type TaskService struct {
	repo repo.TaskRepository
	dir  Directory
}

func NewTaskService(repo repo.TaskRepository, dir Directory) *TaskService {
	return &TaskService{repo: repo, dir: dir}
}

// Create makes a new task in todo. Only manager, hr and admin actors
// may create; a manager only inside their own department.
func (s *TaskService) Create(ctx context.Context, actor model.Actor, in model.CreateTaskInput, idempKey string, now time.Time) (model.Task, error) {
	var t model.Task

	switch actor.Role {
	case model.RoleManager:
		if in.DepartmentID != actor.DepartmentID {
			return t, fmt.Errorf("%w: cannot create tasks outside the managed department", workflow.ErrForbidden)
		}
	case model.RoleHR, model.RoleAdmin:
	default:
		return t, fmt.Errorf("%w: role %q cannot create tasks", workflow.ErrForbidden, actor.Role)
	}

	t, err := s.buildTask(ctx, actor, in, now)
	if err != nil {
		return t, err
	}

	if idempKey != "" {
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, idempKey, created.ID)
	}

	return created, nil
}

func (s *TaskService) buildTask(ctx context.Context, actor model.Actor, in model.CreateTaskInput, now time.Time) (model.Task, error) {
	var t model.Task

	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return t, fmt.Errorf("%w: title must be %d-%d characters", ErrValidation, titleMinLen, titleMaxLen)
	}
	if utf8.RuneCountInString(in.Description) > descriptionMaxLen {
		return t, fmt.Errorf("%w: description exceeds %d characters", ErrValidation, descriptionMaxLen)
	}
	if !in.Priority.IsValid() {
		return t, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if in.AssignedTo == "" {
		return t, fmt.Errorf("%w: assignee is required", ErrValidation)
	}
	if in.DepartmentID == "" {
		return t, fmt.Errorf("%w: department is required", ErrValidation)
	}
	if in.Deadline.IsZero() {
		return t, fmt.Errorf("%w: deadline is required", ErrValidation)
	}
	if dateOf(in.Deadline).Before(dateOf(now)) {
		return t, fmt.Errorf("%w: deadline is in the past", ErrValidation)
	}
	if in.EstimatedHours != nil && *in.EstimatedHours <= 0 {
		return t, fmt.Errorf("%w: estimated hours must be positive", ErrValidation)
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return t, err
	}

	t = model.Task{
		Title:          title,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         model.StatusTodo,
		AssignedTo:     in.AssignedTo,
		AssignedBy:     actor.ID,
		DepartmentID:   in.DepartmentID,
		Deadline:       in.Deadline,
		EstimatedHours: in.EstimatedHours,
		Tags:           tags,
	}

	if s.dir != nil {
		assignee, found, err := s.dir.Lookup(ctx, in.AssignedTo)
		if err != nil {
			return t, err
		}
		if !found {
			return t, fmt.Errorf("%w: unknown assignee %q", ErrValidation, in.AssignedTo)
		}
		if assignee.DepartmentID != in.DepartmentID {
			return t, fmt.Errorf("%w: assignee is not a member of the department", ErrValidation)
		}
		t.AssignedToName = assignee.Name

		// Display name of the creator is best-effort.
		if creator, found, err := s.dir.Lookup(ctx, actor.ID); err == nil && found {
			t.AssignedByName = creator.Name
		}
	}

	return t, nil
}

// Get returns a task with its activity log. Tasks outside the actor's
// visibility scope report not found, never their existence.
func (s *TaskService) Get(ctx context.Context, actor model.Actor, id string, now time.Time) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if !workflow.CanSee(actor, t) {
		return model.Task{}, repo.ErrorNotFound
	}
	t.Overdue = workflow.IsOverdue(t, now)
	return t, nil
}

// Transition moves a task along the role-scoped transition table and
// appends exactly one activity-log entry, atomically.
func (s *TaskService) Transition(ctx context.Context, actor model.Actor, id string, in workflow.TransitionInput, now time.Time) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if err := workflow.Authorize(actor, t); err != nil {
		return model.Task{}, err
	}
	if err := workflow.CheckTransition(actor.Role, t.Status, in.To); err != nil {
		return model.Task{}, err
	}

	patch := model.TaskPatch{
		Status:       in.To,
		ActualHours:  t.ActualHours,
		CancelReason: t.CancelReason,
	}

	switch in.To {
	case model.StatusCompleted:
		if in.ActualHours == nil {
			return model.Task{}, fmt.Errorf("%w: actual hours are required to complete a task", ErrValidation)
		}
		if *in.ActualHours < 0 {
			return model.Task{}, fmt.Errorf("%w: actual hours must not be negative", ErrValidation)
		}
		patch.ActualHours = in.ActualHours
	case model.StatusCancelled:
		reason := strings.TrimSpace(in.CancelReason)
		if reason == "" {
			return model.Task{}, fmt.Errorf("%w: a cancel reason is required", ErrValidation)
		}
		patch.CancelReason = reason
	case model.StatusTodo:
		// Reversing a cancellation leaves no reason behind.
		if t.Status == model.StatusCancelled {
			patch.CancelReason = ""
		}
	}

	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		msg = defaultTransitionMessage
	} else if n := utf8.RuneCountInString(msg); n < messageMinLen || n > messageMaxLen {
		return model.Task{}, fmt.Errorf("%w: message must be %d-%d characters", ErrValidation, messageMinLen, messageMaxLen)
	}

	entry := model.TaskUpdate{
		UpdatedBy:    actor.ID,
		Message:      msg,
		StatusChange: workflow.StatusChangeLabel(t.Status, in.To),
	}

	updated, err := s.repo.Transition(ctx, id, t.Version, patch, entry)
	if err != nil {
		return updated, err
	}
	updated.Overdue = workflow.IsOverdue(updated, now)
	return updated, nil
}

// AddUpdate appends a free-text note to the activity log. Cancelled
// tasks no longer accept notes.
func (s *TaskService) AddUpdate(ctx context.Context, actor model.Actor, id, message string, now time.Time) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if err := workflow.Authorize(actor, t); err != nil {
		return model.Task{}, err
	}
	if t.Status == model.StatusCancelled {
		return model.Task{}, fmt.Errorf("%w: cancelled tasks do not accept updates", ErrInvalidState)
	}

	msg := strings.TrimSpace(message)
	if n := utf8.RuneCountInString(msg); n < messageMinLen || n > messageMaxLen {
		return model.Task{}, fmt.Errorf("%w: message must be %d-%d characters", ErrValidation, messageMinLen, messageMaxLen)
	}

	updated, err := s.repo.AppendUpdate(ctx, id, t.Version, model.TaskUpdate{
		UpdatedBy: actor.ID,
		Message:   msg,
	})
	if err != nil {
		return updated, err
	}
	updated.Overdue = workflow.IsOverdue(updated, now)
	return updated, nil
}

// Delete removes a task that never left todo. Only hr and admin may
// delete.
func (s *TaskService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if actor.Role != model.RoleHR && actor.Role != model.RoleAdmin {
		return fmt.Errorf("%w: role %q cannot delete tasks", workflow.ErrForbidden, actor.Role)
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != model.StatusTodo {
		return fmt.Errorf("%w: only todo tasks can be deleted", ErrInvalidState)
	}
	return s.repo.Delete(ctx, id, t.Version)
}

func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > tagMaxLen {
			return nil, fmt.Errorf("%w: tag %q exceeds %d characters", ErrValidation, tag, tagMaxLen)
		}
		if _, dup := seen[tag]; dup {
			return nil, fmt.Errorf("%w: duplicate tag %q", ErrValidation, tag)
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > maxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed", ErrValidation, maxTags)
	}
	return out, nil
}

// dateOf truncates to the UTC calendar date. The deadline check at
// creation is date-granular.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
