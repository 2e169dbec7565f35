package analytics

import (
	"fmt"
	"time"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// ActionType distinguishes risk mitigations from opportunities.
type ActionType string

const (
	ActionRisk        ActionType = "risk"
	ActionOpportunity ActionType = "opportunity"
)

// StrategicAction is a derived recommendation surfaced to executives.
// IDs are fixed strings so identical snapshots produce identical reports.
type StrategicAction struct {
	ID          string     `json:"id"`
	Type        ActionType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Impact      string     `json:"impact"`
}

// StrategicActions derives up to cfg.MaxActions recommendations. Triggers
// are evaluated in a fixed order and results keep insertion order: the
// critical-bug action carries a higher priority label than the stagnation
// action yet still lists second. The output is never re-sorted.
func StrategicActions(projects []model.Project, tasks []model.Task, bugs []model.Bug, now time.Time, cfg config.AnalyticsConfig) []StrategicAction {
	var actions []StrategicAction

	if n := countStagnant(projects, now, cfg.StaleAfterDays); n > 0 {
		actions = append(actions, StrategicAction{
			ID:          "stagnant-projects",
			Type:        ActionRisk,
			Title:       "Revive stagnant projects",
			Description: fmt.Sprintf("%d active project(s) have had no updates in over %d days", n, cfg.StaleAfterDays),
			Priority:    "high",
			Impact:      "high",
		})
	}

	if n := countOpenCritical(bugs); n > 0 {
		actions = append(actions, StrategicAction{
			ID:          "critical-bugs",
			Type:        ActionRisk,
			Title:       "Resolve critical bugs",
			Description: fmt.Sprintf("%d critical bug(s) remain open across the portfolio", n),
			Priority:    "critical",
			Impact:      "high",
		})
	}

	if n := countHighHealth(projects); n > 0 {
		actions = append(actions, StrategicAction{
			ID:          "scale-healthy-projects",
			Type:        ActionOpportunity,
			Title:       "Scale high-performing projects",
			Description: fmt.Sprintf("%d project(s) report a health score above 90", n),
			Priority:    "medium",
			Impact:      "medium",
		})
	}

	if n := countPastDue(projects, now); n > 0 {
		actions = append(actions, StrategicAction{
			ID:          "delayed-projects",
			Type:        ActionRisk,
			Title:       "Recover delayed projects",
			Description: fmt.Sprintf("%d project(s) are past their target end date", n),
			Priority:    "high",
			Impact:      "medium",
		})
	}

	if highVelocity(tasks) {
		actions = append(actions, StrategicAction{
			ID:          "delivery-momentum",
			Type:        ActionOpportunity,
			Title:       "Capitalize on delivery momentum",
			Description: "at least 80% of tracked tasks are done; consider pulling work forward",
			Priority:    "low",
			Impact:      "low",
		})
	}

	if cfg.MaxActions >= 0 && len(actions) > cfg.MaxActions {
		actions = actions[:cfg.MaxActions]
	}
	return actions
}

func countStagnant(projects []model.Project, now time.Time, staleAfterDays int) int {
	cutoff := now.AddDate(0, 0, -staleAfterDays)
	n := 0
	for i := range projects {
		if projects[i].IsActive() && projects[i].UpdatedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

func countOpenCritical(bugs []model.Bug) int {
	n := 0
	for i := range bugs {
		if bugs[i].IsOpenCritical() {
			n++
		}
	}
	return n
}

func countHighHealth(projects []model.Project) int {
	n := 0
	for i := range projects {
		if projects[i].HealthScore != nil && *projects[i].HealthScore > 90 {
			n++
		}
	}
	return n
}

func countPastDue(projects []model.Project, now time.Time) int {
	n := 0
	for i := range projects {
		if projects[i].PastDue(now) {
			n++
		}
	}
	return n
}

func highVelocity(tasks []model.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	var done int
	for i := range tasks {
		if tasks[i].IsDone() {
			done++
		}
	}
	return float64(done)/float64(len(tasks)) >= 0.8
}
