package model

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the scheduling priority of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is a read-only work item belonging to a project.
type Task struct {
	ID          string       `json:"id" yaml:"id"`
	WorkspaceID string       `json:"workspace_id" yaml:"workspace_id"`
	ProjectID   string       `json:"project_id" yaml:"project_id"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	Priority    TaskPriority `json:"priority" yaml:"priority"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	AssigneeID  *string      `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at" yaml:"updated_at"`
}

// IsDone reports whether the task has reached the done state.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}
