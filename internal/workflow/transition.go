package workflow

import (
	"errors"
	"fmt"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
)

// ruleKey addresses one cell of the transition table. Roles collapse
// into two columns: the assignee column and the manager column
// (shared by manager, hr and admin).
type ruleKey struct {
	role model.Role
	from model.Status
}

var transitionTable = map[ruleKey][]model.Status{
	{model.RoleEmployee, model.StatusTodo}:       {model.StatusInProgress},
	{model.RoleEmployee, model.StatusInProgress}: {model.StatusCompleted, model.StatusTodo},

	{model.RoleManager, model.StatusTodo}:       {model.StatusInProgress, model.StatusCancelled},
	{model.RoleManager, model.StatusInProgress}: {model.StatusCompleted, model.StatusTodo, model.StatusCancelled},
	{model.RoleManager, model.StatusCompleted}:  {model.StatusInProgress},
	{model.RoleManager, model.StatusCancelled}:  {model.StatusTodo},
}

func column(r model.Role) model.Role {
	if r == model.RoleEmployee {
		return model.RoleEmployee
	}
	return model.RoleManager
}

// CanTransition reports whether the table allows role to move a task
// from one status to another.
func CanTransition(role model.Role, from, to model.Status) bool {
	for _, s := range transitionTable[ruleKey{column(role), from}] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition with the failing pair attached to
// the error, so callers can surface it verbatim.
func CheckTransition(role model.Role, from, to model.Status) error {
	if !CanTransition(role, from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// StatusChangeLabel is the human-readable label stored in the activity
// log for a status change.
func StatusChangeLabel(from, to model.Status) string {
	return fmt.Sprintf("%s → %s", from, to)
}

// Authorize checks whether the actor may act on the task at all:
// an employee only on tasks assigned to them, a manager only inside
// their managed department, hr and admin everywhere.
func Authorize(actor model.Actor, t model.Task) error {
	switch actor.Role {
	case model.RoleEmployee:
		if t.AssignedTo != actor.ID {
			return fmt.Errorf("%w: task is not assigned to the caller", ErrForbidden)
		}
	case model.RoleManager:
		if t.DepartmentID != actor.DepartmentID {
			return fmt.Errorf("%w: task is outside the caller's department", ErrForbidden)
		}
	case model.RoleHR, model.RoleAdmin:
	default:
		return ErrForbidden
	}
	return nil
}

// CanSee reports read visibility. It mirrors Authorize but is used by
// the query layer, where an out-of-scope task is reported as not found
// instead of forbidden.
func CanSee(actor model.Actor, t model.Task) bool {
	return Authorize(actor, t) == nil
}

// TransitionInput is the caller-supplied payload of a transition.
type TransitionInput struct {
	To           model.Status `json:"to"`
	Message      string       `json:"message"`
	ActualHours  *float64     `json:"actual_hours"`
	CancelReason string       `json:"cancel_reason"`
}
