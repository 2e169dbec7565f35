package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harborview/insights-cli/internal/model"
)

// testNow is the fixed clock used across the analytics tests.
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func ptrFloat64(v float64) *float64  { return &v }
func ptrInt(v int) *int              { return &v }
func ptrTime(v time.Time) *time.Time { return &v }
func daysAgo(n int) time.Time        { return testNow.AddDate(0, 0, -n) }
func daysAhead(n int) time.Time      { return testNow.AddDate(0, 0, n) }

func activeProject(id string, updated time.Time) model.Project {
	return model.Project{
		ID:        id,
		Name:      "Project " + id,
		Status:    model.ProjectStatusActive,
		CreatedAt: daysAgo(60),
		UpdatedAt: updated,
	}
}

func completedProject(id string, updated time.Time) model.Project {
	return model.Project{
		ID:        id,
		Name:      "Project " + id,
		Status:    model.ProjectStatusCompleted,
		CreatedAt: daysAgo(60),
		UpdatedAt: updated,
	}
}

func taskWithStatus(id string, status model.TaskStatus) model.Task {
	return model.Task{ID: id, ProjectID: "p1", Status: status, UpdatedAt: daysAgo(1)}
}

func openBug(id string, severity model.BugSeverity) model.Bug {
	return model.Bug{ID: id, ProjectID: "p1", Severity: severity, Status: model.BugStatusOpen, UpdatedAt: daysAgo(1)}
}

func TestScoreHealth_EmptyPortfolio(t *testing.T) {
	h := ScoreHealth(nil, nil, nil, testNow, DefaultConfig())

	assert.Equal(t, 100, h.Score)
	assert.Equal(t, HealthExcellent, h.Status)
	assert.Equal(t, HealthFactors{
		Completion:  100,
		BugSeverity: 100,
		Velocity:    100,
		Stagnation:  100,
		Workload:    100,
	}, h.Factors)
}

func TestStatusForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  HealthStatus
	}{
		{0, HealthCritical},
		{49, HealthCritical},
		{50, HealthAtRisk},
		{69, HealthAtRisk},
		{70, HealthExcellent},
		{100, HealthExcellent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForScore(tt.score), "score=%d", tt.score)
	}
}

func TestScoreCompletion(t *testing.T) {
	tests := []struct {
		name     string
		projects []model.Project
		want     float64
	}{
		{"no active projects", []model.Project{completedProject("a", daysAgo(1))}, 100},
		{"only on-hold projects", []model.Project{{ID: "a", Status: model.ProjectStatusOnHold}}, 100},
		{"half completed boosted", []model.Project{
			completedProject("a", daysAgo(1)),
			activeProject("b", daysAgo(1)),
		}, 60}, // 50% * 1.2
		{"all active", []model.Project{
			activeProject("a", daysAgo(1)),
			activeProject("b", daysAgo(1)),
		}, 0},
		{"boost capped at 100", []model.Project{
			completedProject("a", daysAgo(1)),
			completedProject("b", daysAgo(1)),
			completedProject("c", daysAgo(1)),
			completedProject("d", daysAgo(1)),
			activeProject("e", daysAgo(1)),
		}, 96}, // 80% * 1.2
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoreCompletion(tt.projects), 0.01)
		})
	}
}

func TestScoreBugSeverity(t *testing.T) {
	tests := []struct {
		name string
		bugs []model.Bug
		want float64
	}{
		{"no bugs", nil, 100},
		{"only closed bugs", []model.Bug{
			{ID: "b1", Severity: model.BugSeverityCritical, Status: model.BugStatusClosed},
		}, 100},
		{"one critical", []model.Bug{openBug("b1", model.BugSeverityCritical)}, 80},
		{"one high", []model.Bug{openBug("b1", model.BugSeverityHigh)}, 90},
		{"one low", []model.Bug{openBug("b1", model.BugSeverityLow)}, 98},
		{"one medium counts as other", []model.Bug{openBug("b1", model.BugSeverityMedium)}, 98},
		{"penalty floors at zero", []model.Bug{
			openBug("b1", model.BugSeverityCritical),
			openBug("b2", model.BugSeverityCritical),
			openBug("b3", model.BugSeverityCritical),
			openBug("b4", model.BugSeverityCritical),
			openBug("b5", model.BugSeverityCritical),
			openBug("b6", model.BugSeverityCritical),
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoreBugSeverity(tt.bugs), 0.01)
		})
	}
}

func TestScoreVelocity(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		want  float64
	}{
		{"no tasks", nil, 100},
		{"all done", []model.Task{
			taskWithStatus("t1", model.TaskStatusDone),
			taskWithStatus("t2", model.TaskStatusDone),
		}, 100},
		{"two of three done", []model.Task{
			taskWithStatus("t1", model.TaskStatusDone),
			taskWithStatus("t2", model.TaskStatusDone),
			taskWithStatus("t3", model.TaskStatusTodo),
		}, 66.67},
		{"none done", []model.Task{taskWithStatus("t1", model.TaskStatusInProgress)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoreVelocity(tt.tasks), 0.01)
		})
	}
}

func TestScoreStagnation(t *testing.T) {
	t.Run("fresh projects keep 100", func(t *testing.T) {
		projects := []model.Project{activeProject("a", daysAgo(3))}
		assert.InDelta(t, 100, scoreStagnation(projects, testNow, 14), 0.01)
	})

	t.Run("one stale active project", func(t *testing.T) {
		projects := []model.Project{activeProject("a", daysAgo(20))}
		assert.InDelta(t, 90, scoreStagnation(projects, testNow, 14), 0.01)
	})

	t.Run("stale completed projects do not count", func(t *testing.T) {
		projects := []model.Project{completedProject("a", daysAgo(200))}
		assert.InDelta(t, 100, scoreStagnation(projects, testNow, 14), 0.01)
	})

	t.Run("goes negative when many projects stall", func(t *testing.T) {
		var projects []model.Project
		for i := 0; i < 12; i++ {
			projects = append(projects, activeProject(string(rune('a'+i)), daysAgo(30)))
		}
		assert.InDelta(t, -20, scoreStagnation(projects, testNow, 14), 0.01)
	})
}

func TestScoreHealth_AggregateClamped(t *testing.T) {
	// Enough stale active projects to drag the weighted sum below zero
	// territory for the stagnation factor; the aggregate must stay in [0,100].
	var projects []model.Project
	for i := 0; i < 25; i++ {
		projects = append(projects, activeProject(string(rune('a'+i)), daysAgo(40)))
	}
	var bugs []model.Bug
	for i := 0; i < 10; i++ {
		bugs = append(bugs, openBug(string(rune('a'+i)), model.BugSeverityCritical))
	}
	tasks := []model.Task{taskWithStatus("t1", model.TaskStatusTodo)}

	h := ScoreHealth(projects, tasks, bugs, testNow, DefaultConfig())

	assert.GreaterOrEqual(t, h.Score, 0)
	assert.LessOrEqual(t, h.Score, 100)
	assert.Negative(t, h.Factors.Stagnation, "factor reported as computed, not re-clamped")
	assert.Equal(t, HealthCritical, h.Status)
}

func TestScoreHealth_EndToEndScenario(t *testing.T) {
	// One active project idle for 20 days, one completed project, two of
	// three tasks done, one open critical bug.
	projects := []model.Project{
		activeProject("p1", daysAgo(20)),
		completedProject("p2", daysAgo(2)),
	}
	tasks := []model.Task{
		taskWithStatus("t1", model.TaskStatusDone),
		taskWithStatus("t2", model.TaskStatusDone),
		taskWithStatus("t3", model.TaskStatusTodo),
	}
	bugs := []model.Bug{openBug("b1", model.BugSeverityCritical)}

	h := ScoreHealth(projects, tasks, bugs, testNow, DefaultConfig())

	assert.Equal(t, 60, h.Factors.Completion, "50%% completed ratio boosted by 1.2")
	assert.Equal(t, 80, h.Factors.BugSeverity, "100 - 2*10 for one open critical")
	assert.Equal(t, 67, h.Factors.Velocity)
	assert.Equal(t, 90, h.Factors.Stagnation)
	assert.Equal(t, 85, h.Factors.Workload)

	// 0.30*60 + 0.25*80 + 0.20*66.67 + 0.15*90 + 0.10*85 = 73.33
	assert.Equal(t, 73, h.Score)
	assert.Equal(t, HealthExcellent, h.Status)
}
