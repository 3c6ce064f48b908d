package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

func TestIsOverdue(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status model.Status
		now    time.Time
		want   bool
	}{
		{"todo before deadline", model.StatusTodo, deadline.Add(-time.Minute), false},
		{"todo at deadline", model.StatusTodo, deadline, false},
		{"todo after deadline", model.StatusTodo, deadline.Add(time.Minute), true},
		{"in_progress after deadline", model.StatusInProgress, deadline.Add(time.Hour), true},
		{"completed after deadline", model.StatusCompleted, deadline.Add(time.Hour), false},
		{"cancelled after deadline", model.StatusCancelled, deadline.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := model.Task{Status: tt.status, Deadline: deadline}
			assert.Equal(t, tt.want, IsOverdue(task, tt.now))
		})
	}
}

// Flipping now across the deadline flips the result with no other
// input changes.
func TestIsOverdue_BoundaryFlip(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	task := model.Task{Status: model.StatusInProgress, Deadline: deadline}

	assert.False(t, IsOverdue(task, deadline.Add(-time.Nanosecond)))
	assert.True(t, IsOverdue(task, deadline.Add(time.Nanosecond)))
}
