package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/insights-cli/internal/model"
)

func scheduledProject(id string, start, end int) model.Project {
	p := activeProject(id, daysAgo(1))
	p.StartDate = ptrTime(daysAgo(start))
	p.TargetEndDate = ptrTime(daysAhead(end))
	return p
}

func TestProjectTimelines_OnlyActiveFirstFive(t *testing.T) {
	var projects []model.Project
	for i := 0; i < 7; i++ {
		projects = append(projects, scheduledProject(string(rune('a'+i)), 10, 10))
	}
	projects = append(projects, completedProject("z", daysAgo(1)))

	got := ProjectTimelines(projects, testNow, DefaultConfig())
	require.Len(t, got, 5, "capped to first five active projects")
	assert.Equal(t, "a", got[0].ProjectID)
	assert.Equal(t, "e", got[4].ProjectID)
}

func TestProjectTimelines_ProgressMidway(t *testing.T) {
	p := scheduledProject("a", 10, 10)

	got := ProjectTimelines([]model.Project{p}, testNow, DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].CurrentProgress)
	assert.Equal(t, TimelineOnTrack, got[0].Status)
	assert.Equal(t, 40, got[0].MilestoneCompletion, "0.8x progress placeholder")
}

func TestProjectTimelines_ProgressClamped(t *testing.T) {
	// Past the end date: elapsed exceeds the window, progress clamps to 100.
	p := activeProject("a", daysAgo(1))
	p.StartDate = ptrTime(daysAgo(30))
	p.TargetEndDate = ptrTime(daysAgo(5))

	got := ProjectTimelines([]model.Project{p}, testNow, DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].CurrentProgress)
	assert.Equal(t, TimelineOnTrack, got[0].Status, "full progress past deadline is not delayed")
}

func TestProjectTimelines_StartFallsBackToCreation(t *testing.T) {
	p := activeProject("a", daysAgo(1)) // CreatedAt is 60 days ago
	p.TargetEndDate = ptrTime(daysAhead(60))

	got := ProjectTimelines([]model.Project{p}, testNow, DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, p.CreatedAt, got[0].StartDate)
	assert.Equal(t, 50, got[0].CurrentProgress)
}

func TestProjectTimelines_NoDateRange(t *testing.T) {
	p := activeProject("a", daysAgo(1))

	got := ProjectTimelines([]model.Project{p}, testNow, DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].CurrentProgress)
	assert.Equal(t, TimelineOnTrack, got[0].Status)
	assert.Nil(t, got[0].ExpectedEndDate)
}

func TestTimelineStatus_Ordering(t *testing.T) {
	past := daysAgo(2)
	future := daysAhead(2)

	t.Run("behind at deadline is delayed", func(t *testing.T) {
		assert.Equal(t, TimelineDelayed, timelineStatus(40, 1.1, &past, testNow))
	})

	t.Run("delayed check takes precedence over at risk", func(t *testing.T) {
		assert.Equal(t, TimelineDelayed, timelineStatus(30, 0.9, &past, testNow))
	})

	t.Run("slow progress late in window is at risk", func(t *testing.T) {
		assert.Equal(t, TimelineAtRisk, timelineStatus(30, 0.7, &future, testNow))
	})

	t.Run("healthy progress is on track", func(t *testing.T) {
		assert.Equal(t, TimelineOnTrack, timelineStatus(55, 0.5, &future, testNow))
	})

	t.Run("no end date can never be delayed", func(t *testing.T) {
		assert.Equal(t, TimelineOnTrack, timelineStatus(10, 0.2, nil, testNow))
	})
}
