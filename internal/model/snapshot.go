// Package model defines the portfolio records consumed by the analytics
// engine: projects, tasks, bugs, and workspace members.
package model

// Snapshot is a fully materialized, already-authorized view of a workspace's
// records. It is the input contract for the analytics engine: the engine
// reads it, never writes it, and assumes the persistence layer has done all
// joining and access-control filtering.
type Snapshot struct {
	WorkspaceID string    `json:"workspace_id" yaml:"workspace_id"`
	Projects    []Project `json:"projects" yaml:"projects"`
	Tasks       []Task    `json:"tasks" yaml:"tasks"`
	Bugs        []Bug     `json:"bugs" yaml:"bugs"`
	Members     []Member  `json:"members" yaml:"members"`
}
