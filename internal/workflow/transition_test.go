package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

var allStatuses = []model.Status{
	model.StatusTodo, model.StatusInProgress, model.StatusCompleted, model.StatusCancelled,
}

func TestCanTransition_Table(t *testing.T) {
	// Expected allowed targets per (role column, from). Everything not
	// listed here must be rejected.
	allowed := map[model.Role]map[model.Status][]model.Status{
		model.RoleEmployee: {
			model.StatusTodo:       {model.StatusInProgress},
			model.StatusInProgress: {model.StatusCompleted, model.StatusTodo},
			model.StatusCompleted:  {},
			model.StatusCancelled:  {},
		},
		model.RoleManager: {
			model.StatusTodo:       {model.StatusInProgress, model.StatusCancelled},
			model.StatusInProgress: {model.StatusCompleted, model.StatusTodo, model.StatusCancelled},
			model.StatusCompleted:  {model.StatusInProgress},
			model.StatusCancelled:  {model.StatusTodo},
		},
	}

	columns := map[model.Role]model.Role{
		model.RoleEmployee: model.RoleEmployee,
		model.RoleManager:  model.RoleManager,
		model.RoleHR:       model.RoleManager,
		model.RoleAdmin:    model.RoleManager,
	}

	for role, col := range columns {
		for _, from := range allStatuses {
			for _, to := range allStatuses {
				want := false
				for _, s := range allowed[col][from] {
					if s == to {
						want = true
					}
				}
				got := CanTransition(role, from, to)
				assert.Equal(t, want, got, "role=%s from=%s to=%s", role, from, to)
			}
		}
	}
}

func TestCheckTransition_NamesThePair(t *testing.T) {
	err := CheckTransition(model.RoleEmployee, model.StatusTodo, model.StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "todo → cancelled")

	require.NoError(t, CheckTransition(model.RoleEmployee, model.StatusTodo, model.StatusInProgress))
}

func TestStatusChangeLabel(t *testing.T) {
	assert.Equal(t, "todo → in_progress",
		StatusChangeLabel(model.StatusTodo, model.StatusInProgress))
}

func TestAuthorize(t *testing.T) {
	task := model.Task{AssignedTo: "emp-1", DepartmentID: "dept-a"}

	tests := []struct {
		name    string
		actor   model.Actor
		wantErr bool
	}{
		{"assignee", model.Actor{ID: "emp-1", Role: model.RoleEmployee}, false},
		{"other employee", model.Actor{ID: "emp-2", Role: model.RoleEmployee}, true},
		{"manager of department", model.Actor{ID: "mgr-1", Role: model.RoleManager, DepartmentID: "dept-a"}, false},
		{"manager of other department", model.Actor{ID: "mgr-2", Role: model.RoleManager, DepartmentID: "dept-b"}, true},
		{"hr", model.Actor{ID: "hr-1", Role: model.RoleHR}, false},
		{"admin", model.Actor{ID: "adm-1", Role: model.RoleAdmin}, false},
		{"unknown role", model.Actor{ID: "x", Role: "intern"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, task)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
				assert.False(t, CanSee(tt.actor, task))
			} else {
				assert.NoError(t, err)
				assert.True(t, CanSee(tt.actor, task))
			}
		})
	}
}
