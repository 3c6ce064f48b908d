package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/workflow"
)

// PageSize is the fixed page size of task lists.
const PageSize = 10

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
}

type ListResult struct {
	Items      []model.Task   `json:"items"`
	Summary    Summary        `json:"summary"`
	Breakdown  []BreakdownRow `json:"breakdown,omitempty"`
	Pagination Pagination     `json:"pagination"`
}

// List resolves the actor's visibility scope, applies filters, sorts,
// paginates, and aggregates. Summary and breakdown cover the whole
// scoped set, not just the returned page, and share the single now.
func (s *TaskService) List(ctx context.Context, actor model.Actor, q model.TaskQuery, now time.Time) (ListResult, error) {
	var res ListResult

	filter, err := scopeFilter(actor, q.Filter)
	if err != nil {
		return res, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return res, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return res, fmt.Errorf("%w: unknown priority %q", ErrValidation, *filter.Priority)
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return res, err
	}

	if err := sortTasks(tasks, q.Sort); err != nil {
		return res, err
	}

	res.Summary = summarize(tasks, now)
	res.Breakdown = breakdownFor(actor, tasks, now)

	page := q.Page
	if page < 1 {
		page = 1
	}
	total := len(tasks)
	totalPages := (total + PageSize - 1) / PageSize

	res.Pagination = Pagination{CurrentPage: page, TotalPages: totalPages, Total: total}

	start := (page - 1) * PageSize
	if start >= total {
		// Out-of-range pages return empty items with correct totals.
		res.Items = []model.Task{}
		return res, nil
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	items := make([]model.Task, end-start)
	copy(items, tasks[start:end])
	for i := range items {
		items[i].Overdue = workflow.IsOverdue(items[i], now)
	}
	res.Items = items
	return res, nil
}

// scopeFilter narrows the filter to what the actor may see. Scope
// always wins over caller-supplied filters.
func scopeFilter(actor model.Actor, f model.TaskFilter) (model.TaskFilter, error) {
	switch actor.Role {
	case model.RoleEmployee:
		id := actor.ID
		f.AssignedTo = &id
	case model.RoleManager:
		dept := actor.DepartmentID
		f.DepartmentID = &dept
	case model.RoleHR, model.RoleAdmin:
		// Full visibility; an optional department filter stands as given.
	default:
		return f, fmt.Errorf("%w: unknown role %q", workflow.ErrForbidden, actor.Role)
	}
	return f, nil
}

func sortTasks(tasks []model.Task, key model.SortKey) error {
	switch key {
	case model.SortDeadline:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Deadline.Before(tasks[j].Deadline)
		})
	case model.SortCreatedAt, "":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case model.SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
			if ri != rj {
				return ri > rj
			}
			return tasks[i].Deadline.Before(tasks[j].Deadline)
		})
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrValidation, key)
	}
	return nil
}
