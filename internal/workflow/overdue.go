package workflow

import (
	"time"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

// IsOverdue reports whether the task has missed its deadline.
// Completed and cancelled tasks are never overdue. The clock is an
// explicit argument so one reading can serve a whole response.
func IsOverdue(t model.Task, now time.Time) bool {
	return t.Status.Open() && t.Deadline.Before(now)
}
