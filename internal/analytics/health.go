package analytics

import (
	"math"
	"time"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// HealthStatus is the label attached to an aggregate health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "Excellent"
	HealthAtRisk    HealthStatus = "At Risk"
	HealthCritical  HealthStatus = "Critical"
)

// HealthFactors holds the five weighted factor values, reported as computed.
// Only the aggregate score is clamped; stagnation in particular can go
// negative when many active projects have gone stale.
type HealthFactors struct {
	Completion  int `json:"completion"`
	BugSeverity int `json:"bugSeverity"`
	Velocity    int `json:"velocity"`
	Stagnation  int `json:"stagnation"`
	Workload    int `json:"workload"`
}

// PortfolioHealth is the composite 0-100 wellness score for a portfolio.
type PortfolioHealth struct {
	Score   int           `json:"score"`
	Status  HealthStatus  `json:"status"`
	Factors HealthFactors `json:"factors"`
}

// workloadFactor is a placeholder pending a real workload model upstream.
const workloadFactor = 85.0

// ScoreHealth computes the weighted portfolio health score. An empty project
// list scores a perfect 100: nothing to be unhealthy about.
func ScoreHealth(projects []model.Project, tasks []model.Task, bugs []model.Bug, now time.Time, cfg config.AnalyticsConfig) PortfolioHealth {
	if len(projects) == 0 {
		return PortfolioHealth{
			Score:  100,
			Status: HealthExcellent,
			Factors: HealthFactors{
				Completion:  100,
				BugSeverity: 100,
				Velocity:    100,
				Stagnation:  100,
				Workload:    100,
			},
		}
	}

	completion := scoreCompletion(projects)
	bugSeverity := scoreBugSeverity(bugs)
	velocity := scoreVelocity(tasks)
	stagnation := scoreStagnation(projects, now, cfg.StaleAfterDays)

	weighted := cfg.CompletionWeight*completion +
		cfg.BugSeverityWeight*bugSeverity +
		cfg.VelocityWeight*velocity +
		cfg.StagnationWeight*stagnation +
		cfg.WorkloadWeight*workloadFactor

	score := clampScore(roundPct(weighted))

	return PortfolioHealth{
		Score:  score,
		Status: StatusForScore(score),
		Factors: HealthFactors{
			Completion:  roundPct(completion),
			BugSeverity: roundPct(bugSeverity),
			Velocity:    roundPct(velocity),
			Stagnation:  roundPct(stagnation),
			Workload:    roundPct(workloadFactor),
		},
	}
}

// StatusForScore maps an aggregate score to its label. The critical check
// runs first; [50,70) is at risk, 70 and above is excellent.
func StatusForScore(score int) HealthStatus {
	if score < 50 {
		return HealthCritical
	}
	if score < 70 {
		return HealthAtRisk
	}
	return HealthExcellent
}

// scoreCompletion rewards a high ratio of completed to active projects,
// with a 1.2x boost capped at 100. No active projects means there is
// nothing left to finish, so the ratio is treated as fully healthy.
func scoreCompletion(projects []model.Project) float64 {
	var completed, active int
	for i := range projects {
		switch {
		case projects[i].IsCompleted():
			completed++
		case projects[i].IsActive():
			active++
		}
	}

	ratio := 100.0
	if active > 0 {
		ratio = float64(completed) / float64(completed+active) * 100
	}
	return math.Min(ratio*1.2, 100)
}

// scoreBugSeverity penalizes open bugs weighted by severity: 10x critical,
// 5x high, 1x everything else, doubled overall and capped so the factor
// bottoms out at 0. The coefficients are a legacy heuristic; do not retune
// them without recalibrating the dashboards.
func scoreBugSeverity(bugs []model.Bug) float64 {
	var critical, high, other int
	for i := range bugs {
		if !bugs[i].IsOpen() {
			continue
		}
		switch bugs[i].Severity {
		case model.BugSeverityCritical:
			critical++
		case model.BugSeverityHigh:
			high++
		default:
			other++
		}
	}

	if critical+high+other == 0 {
		return 100
	}

	penalty := math.Min(2*float64(10*critical+5*high+other), 100)
	return math.Max(100-penalty, 0)
}

// scoreVelocity is the done-task ratio. No tasks at all scores 100.
func scoreVelocity(tasks []model.Task) float64 {
	if len(tasks) == 0 {
		return 100
	}
	var done int
	for i := range tasks {
		if tasks[i].IsDone() {
			done++
		}
	}
	return float64(done) / float64(len(tasks)) * 100
}

// scoreStagnation starts at 100 and deducts 10 points for every active
// project with no update inside the stale window. Deliberately not clamped:
// the factor is reported as computed and only the aggregate score is bounded.
func scoreStagnation(projects []model.Project, now time.Time, staleAfterDays int) float64 {
	cutoff := now.AddDate(0, 0, -staleAfterDays)
	score := 100.0
	for i := range projects {
		if projects[i].IsActive() && projects[i].UpdatedAt.Before(cutoff) {
			score -= 10
		}
	}
	return score
}

// roundPct rounds a percentage to the nearest integer.
func roundPct(v float64) int {
	return int(math.Round(v))
}

// clampScore bounds an aggregate score to [0, 100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
