package model

import "time"

// BugSeverity represents the reported severity of a bug.
type BugSeverity string

const (
	BugSeverityLow      BugSeverity = "LOW"
	BugSeverityMedium   BugSeverity = "MEDIUM"
	BugSeverityHigh     BugSeverity = "HIGH"
	BugSeverityCritical BugSeverity = "CRITICAL"
)

// BugStatus represents the triage state of a bug. Everything except CLOSED
// counts as open for scoring purposes.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "OPEN"
	BugStatusInProgress BugStatus = "IN_PROGRESS"
	BugStatusResolved   BugStatus = "RESOLVED"
	BugStatusClosed     BugStatus = "CLOSED"
)

// Bug is a read-only defect record belonging to a project.
type Bug struct {
	ID          string      `json:"id" yaml:"id"`
	WorkspaceID string      `json:"workspace_id" yaml:"workspace_id"`
	ProjectID   string      `json:"project_id" yaml:"project_id"`
	Severity    BugSeverity `json:"severity" yaml:"severity"`
	Status      BugStatus   `json:"status" yaml:"status"`
	UpdatedAt   time.Time   `json:"updated_at" yaml:"updated_at"`
}

// IsOpen reports whether the bug is in any state other than CLOSED.
func (b *Bug) IsOpen() bool {
	return b.Status != BugStatusClosed
}

// IsOpenCritical reports whether the bug is an open CRITICAL defect.
func (b *Bug) IsOpenCritical() bool {
	return b.Severity == BugSeverityCritical && b.IsOpen()
}
