package model

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Open reports whether the task is still being worked on.
// Only open tasks can become overdue.
func (s Status) Open() bool {
	return s == StatusTodo || s == StatusInProgress
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting, urgent highest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Role of the acting caller, supplied by the identity provider.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor identifies who is making a call. It is threaded explicitly
// through every engine operation; the engine never reads ambient
// session state.
type Actor struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"department_id"`
}

// Person is a directory record. The engine stores only the id and the
// display name captured at creation time; the directory service owns
// the rest.
type Person struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
}

type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       Priority     `json:"priority"`
	Status         Status       `json:"status"`
	AssignedTo     string       `json:"assigned_to"`
	AssignedToName string       `json:"assigned_to_name,omitempty"`
	AssignedBy     string       `json:"assigned_by"`
	AssignedByName string       `json:"assigned_by_name,omitempty"`
	DepartmentID   string       `json:"department_id"`
	Deadline       time.Time    `json:"deadline"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty"`
	ActualHours    *float64     `json:"actual_hours,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	CancelReason   string       `json:"cancel_reason,omitempty"`
	Overdue        bool         `json:"overdue"`
	Version        int          `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Updates        []TaskUpdate `json:"updates,omitempty"`
}

// TaskUpdate is one entry of a task's append-only activity log.
// Entries are immutable once appended and keep insertion order.
type TaskUpdate struct {
	UpdatedBy    string    `json:"updated_by"`
	Message      string    `json:"message"`
	StatusChange string    `json:"status_change,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskPatch carries the resulting field values a transition writes.
// It holds final values, not deltas, so the repository can apply it
// with a single version-guarded UPDATE.
type TaskPatch struct {
	Status       Status
	ActualHours  *float64
	CancelReason string
}

type TaskFilter struct {
	Status       *Status
	Priority     *Priority
	DepartmentID *string
	AssignedTo   *string
}

// SortKey selects the ordering of a task list.
type SortKey string

const (
	SortDeadline  SortKey = "deadline"   // ascending
	SortCreatedAt SortKey = "created_at" // descending
	SortPriority  SortKey = "priority"   // urgent first, ties by deadline
)

// TaskQuery is the full input of a list request.
type TaskQuery struct {
	Filter TaskFilter
	Sort   SortKey
	Page   int
}

// CreateTaskInput is the caller-supplied part of a new task.
type CreateTaskInput struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       Priority  `json:"priority"`
	AssignedTo     string    `json:"assigned_to"`
	DepartmentID   string    `json:"department_id"`
	Deadline       time.Time `json:"deadline"`
	EstimatedHours *float64  `json:"estimated_hours"`
	Tags           []string  `json:"tags"`
}
