package analytics

import (
	"time"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// TimelineStatus classifies schedule health for a single project.
type TimelineStatus string

const (
	TimelineOnTrack TimelineStatus = "on_track"
	TimelineAtRisk  TimelineStatus = "at_risk"
	TimelineDelayed TimelineStatus = "delayed"
)

// ProjectTimeline is the per-project schedule entry on the stakeholder
// dashboard.
type ProjectTimeline struct {
	ProjectID           string         `json:"projectId"`
	Name                string         `json:"name"`
	StartDate           time.Time      `json:"startDate"`
	ExpectedEndDate     *time.Time     `json:"expectedEndDate,omitempty"`
	CurrentProgress     int            `json:"currentProgress"`
	Status              TimelineStatus `json:"status"`
	MilestoneCompletion int            `json:"milestoneCompletion"`
}

// milestoneMultiplier scales progress into a milestone completion figure.
// Placeholder: no real milestone tracking exists upstream.
const milestoneMultiplier = 0.8

// ProjectTimelines builds timeline entries for active projects, capped to
// the first cfg.MaxTimelines after filtering. Progress is elapsed time
// between the start date (creation date when no start was recorded) and the
// target end date, clamped to [0, 100]. Projects without a usable date range
// report zero progress.
func ProjectTimelines(projects []model.Project, now time.Time, cfg config.AnalyticsConfig) []ProjectTimeline {
	var timelines []ProjectTimeline
	for i := range projects {
		p := &projects[i]
		if !p.IsActive() {
			continue
		}
		if cfg.MaxTimelines > 0 && len(timelines) >= cfg.MaxTimelines {
			break
		}

		start := p.CreatedAt
		if p.StartDate != nil {
			start = *p.StartDate
		}

		var progress int
		var elapsedRatio float64
		if p.TargetEndDate != nil && p.TargetEndDate.After(start) {
			total := p.TargetEndDate.Sub(start)
			elapsedRatio = float64(now.Sub(start)) / float64(total)
			progress = clampScore(roundPct(elapsedRatio * 100))
		}

		timelines = append(timelines, ProjectTimeline{
			ProjectID:           p.ID,
			Name:                p.Name,
			StartDate:           start,
			ExpectedEndDate:     p.TargetEndDate,
			CurrentProgress:     progress,
			Status:              timelineStatus(progress, elapsedRatio, p.TargetEndDate, now),
			MilestoneCompletion: roundPct(milestoneMultiplier * float64(progress)),
		})
	}
	return timelines
}

// timelineStatus derives schedule health, checks evaluated in order:
// behind at the deadline is delayed, slow progress late in the window is at
// risk, everything else is on track.
func timelineStatus(progress int, elapsedRatio float64, end *time.Time, now time.Time) TimelineStatus {
	if progress < 80 && end != nil && now.After(*end) {
		return TimelineDelayed
	}
	if progress < 50 && elapsedRatio > 0.6 {
		return TimelineAtRisk
	}
	return TimelineOnTrack
}
