package model

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project is a read-only portfolio record supplied by the persistence layer.
// The analytics engine never mutates a Project; status transitions happen
// upstream.
type Project struct {
	ID              string        `json:"id" yaml:"id"`
	WorkspaceID     string        `json:"workspace_id" yaml:"workspace_id"`
	Name            string        `json:"name" yaml:"name"`
	Status          ProjectStatus `json:"status" yaml:"status"`
	CreatedAt       time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" yaml:"updated_at"`
	StartDate       *time.Time    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	TargetEndDate   *time.Time    `json:"target_end_date,omitempty" yaml:"target_end_date,omitempty"`
	EstimatedBudget *float64      `json:"estimated_budget,omitempty" yaml:"estimated_budget,omitempty"`
	ActualBudget    *float64      `json:"actual_budget,omitempty" yaml:"actual_budget,omitempty"`
	HealthScore     *int          `json:"health_score,omitempty" yaml:"health_score,omitempty"`
}

// IsActive reports whether the project is in the active state.
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}

// IsCompleted reports whether the project is in the completed state.
func (p *Project) IsCompleted() bool {
	return p.Status == ProjectStatusCompleted
}

// OverBudget reports whether actual spend exceeds the estimate. Projects
// missing either budget figure are never considered over budget.
func (p *Project) OverBudget() bool {
	return p.EstimatedBudget != nil && p.ActualBudget != nil &&
		*p.ActualBudget > *p.EstimatedBudget
}

// PastDue reports whether the project has a target end date in the past
// relative to now. Completed projects are never past due.
func (p *Project) PastDue(now time.Time) bool {
	return !p.IsCompleted() && p.TargetEndDate != nil && p.TargetEndDate.Before(now)
}
