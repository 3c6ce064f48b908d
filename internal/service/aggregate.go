package service

import (
	"sort"
	"time"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/workflow"
)

// Summary is the per-status and overdue counters over a task set.
type Summary struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}

// BreakdownRow is one group of the breakdown: a department for hr and
// admin callers, an employee for managers.
type BreakdownRow struct {
	Key        string `json:"key"`
	Total      int    `json:"total"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Overdue    int    `json:"overdue"`
}

func summarize(tasks []model.Task, now time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			s.Todo++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		case model.StatusCancelled:
			s.Cancelled++
		}
		if workflow.IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

func breakdownFor(actor model.Actor, tasks []model.Task, now time.Time) []BreakdownRow {
	switch actor.Role {
	case model.RoleHR, model.RoleAdmin:
		return breakdown(tasks, func(t model.Task) string { return t.DepartmentID }, now)
	case model.RoleManager:
		return breakdown(tasks, func(t model.Task) string { return t.AssignedTo }, now)
	default:
		return nil
	}
}

func breakdown(tasks []model.Task, key func(model.Task) string, now time.Time) []BreakdownRow {
	byKey := make(map[string]*BreakdownRow)
	for _, t := range tasks {
		k := key(t)
		row, ok := byKey[k]
		if !ok {
			row = &BreakdownRow{Key: k}
			byKey[k] = row
		}
		row.Total++
		switch t.Status {
		case model.StatusInProgress:
			row.InProgress++
		case model.StatusCompleted:
			row.Completed++
		}
		if workflow.IsOverdue(t, now) {
			row.Overdue++
		}
	}

	rows := make([]BreakdownRow, 0, len(byKey))
	for _, row := range byKey {
		rows = append(rows, *row)
	}
	// Deterministic output order.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}
