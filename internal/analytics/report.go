package analytics

import (
	"time"

	"go.uber.org/zap"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// Engine assembles dashboard reports. It holds only configuration: every
// computation is a pure function of the snapshot and the supplied clock, so
// calling it twice on the same inputs yields deeply equal output.
type Engine struct {
	cfg config.AnalyticsConfig
}

// New creates an Engine with the given configuration.
func New(cfg config.AnalyticsConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Overview is the headline counters block shared by both dashboard variants.
type Overview struct {
	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	TeamMembers       int `json:"teamMembers"`
	OnTimeDelivery    int `json:"onTimeDelivery"`
}

// TimeAllocation is the fixed time breakdown on the executive dashboard.
type TimeAllocation struct {
	Development int `json:"development"`
	Meetings    int `json:"meetings"`
	Planning    int `json:"planning"`
	Support     int `json:"support"`
	Other       int `json:"other"`
}

// ResourceUtilization summarizes team capacity on the executive dashboard.
type ResourceUtilization struct {
	TeamMembers     int            `json:"teamMembers"`
	UtilizationRate int            `json:"utilizationRate"`
	TimeAllocation  TimeAllocation `json:"timeAllocation"`
}

// StrategicMetrics holds the executive KPI row.
type StrategicMetrics struct {
	OnTimeDelivery   int `json:"onTimeDelivery"`
	TeamSatisfaction int `json:"teamSatisfaction"`
	Innovation       int `json:"innovation"`
	RiskScore        int `json:"riskScore"`
}

// ActivitySummary counts in-flight work on the executive dashboard.
type ActivitySummary struct {
	TasksInProgress int `json:"tasksInProgress"`
	TasksInReview   int `json:"tasksInReview"`
	OpenBugs        int `json:"openBugs"`
	CriticalBugs    int `json:"criticalBugs"`
}

// ExecutiveReport is the executive dashboard variant.
type ExecutiveReport struct {
	Overview            Overview            `json:"overview"`
	PortfolioHealth     PortfolioHealth     `json:"portfolioHealth"`
	ResourceUtilization ResourceUtilization `json:"resourceUtilization"`
	StrategicMetrics    StrategicMetrics    `json:"strategicMetrics"`
	StrategicActions    []StrategicAction   `json:"strategicActions"`
	ActivitySummary     ActivitySummary     `json:"activitySummary"`
}

// BudgetTracking sums portfolio budgets. Currency amounts stay raw sums;
// only the utilization percentage is rounded.
type BudgetTracking struct {
	TotalEstimated float64 `json:"totalEstimated"`
	TotalActual    float64 `json:"totalActual"`
	Utilization    int     `json:"utilization"`
}

// Deliverables summarizes delivery state on the stakeholder dashboard.
type Deliverables struct {
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Upcoming   int `json:"upcoming"`
	OnTimeRate int `json:"onTimeRate"`
}

// BusinessImpact carries the stakeholder impact figures.
type BusinessImpact struct {
	RevenueImpact        float64 `json:"revenueImpact"`
	CostSavings          float64 `json:"costSavings"`
	CustomerSatisfaction int     `json:"customerSatisfaction"`
	MarketExpansion      int     `json:"marketExpansion"`
}

// StakeholderReport is the stakeholder dashboard variant.
type StakeholderReport struct {
	Overview         Overview          `json:"overview"`
	ROI              ROI               `json:"roi"`
	BudgetTracking   BudgetTracking    `json:"budgetTracking"`
	RiskAssessment   RiskAssessment    `json:"riskAssessment"`
	ProjectTimelines []ProjectTimeline `json:"projectTimelines"`
	Deliverables     Deliverables      `json:"deliverables"`
	BusinessImpact   BusinessImpact    `json:"businessImpact"`
}

// Placeholder metrics pending real data sources. These reproduce the fixed
// values the legacy dashboards shipped with; keep them bit-compatible.
const (
	teamSatisfactionPct = 88
	innovationPct       = 75
	utilizationRatePct  = 78

	// missingActualDefault stands in for projects filed without an actual
	// budget in the budget tracking section. The ROI calculator defaults
	// missing actuals to 0 instead; the two sections are independent
	// contracts and must not be unified silently.
	missingActualDefault = 35000.0
)

var placeholderTimeAllocation = TimeAllocation{
	Development: 40,
	Meetings:    20,
	Planning:    15,
	Support:     15,
	Other:       10,
}

var placeholderBusinessImpact = BusinessImpact{
	RevenueImpact:        1250000,
	CostSavings:          340000,
	CustomerSatisfaction: 92,
	MarketExpansion:      3,
}

// Executive computes the executive dashboard report for a snapshot.
func (e *Engine) Executive(snap *model.Snapshot, now time.Time) *ExecutiveReport {
	members := model.DedupMembers(snap.Members)
	delivery := OnTimeDeliveryRate(snap.Projects, snap.Tasks)
	health := ScoreHealth(snap.Projects, snap.Tasks, snap.Bugs, now, e.cfg)
	risk := AssessRisk(snap.Projects, snap.Bugs, now, e.cfg)

	report := &ExecutiveReport{
		Overview:        buildOverview(snap, len(members), delivery),
		PortfolioHealth: health,
		ResourceUtilization: ResourceUtilization{
			TeamMembers:     len(members),
			UtilizationRate: utilizationRatePct,
			TimeAllocation:  placeholderTimeAllocation,
		},
		StrategicMetrics: StrategicMetrics{
			OnTimeDelivery:   delivery,
			TeamSatisfaction: teamSatisfactionPct,
			Innovation:       innovationPct,
			RiskScore:        risk.OverallRiskScore,
		},
		StrategicActions: StrategicActions(snap.Projects, snap.Tasks, snap.Bugs, now, e.cfg),
		ActivitySummary:  buildActivitySummary(snap.Tasks, snap.Bugs),
	}

	zap.L().Debug("analytics: executive report computed",
		zap.String("workspace", snap.WorkspaceID),
		zap.Int("health_score", health.Score),
		zap.String("health_status", string(health.Status)),
		zap.Int("actions", len(report.StrategicActions)),
	)

	return report
}

// Stakeholder computes the stakeholder dashboard report for a snapshot.
func (e *Engine) Stakeholder(snap *model.Snapshot, now time.Time) *StakeholderReport {
	members := model.DedupMembers(snap.Members)
	delivery := OnTimeDeliveryRate(snap.Projects, snap.Tasks)
	roi := ComputeROI(snap.Projects)

	report := &StakeholderReport{
		Overview:         buildOverview(snap, len(members), delivery),
		ROI:              roi,
		BudgetTracking:   buildBudgetTracking(snap.Projects),
		RiskAssessment:   AssessRisk(snap.Projects, snap.Bugs, now, e.cfg),
		ProjectTimelines: ProjectTimelines(snap.Projects, now, e.cfg),
		Deliverables:     buildDeliverables(snap.Projects, snap.Tasks, now, delivery),
		BusinessImpact:   placeholderBusinessImpact,
	}

	zap.L().Debug("analytics: stakeholder report computed",
		zap.String("workspace", snap.WorkspaceID),
		zap.Int("current_roi", roi.CurrentROI),
		zap.Int("timelines", len(report.ProjectTimelines)),
	)

	return report
}

func buildOverview(snap *model.Snapshot, teamMembers, delivery int) Overview {
	var active, completed int
	for i := range snap.Projects {
		switch {
		case snap.Projects[i].IsActive():
			active++
		case snap.Projects[i].IsCompleted():
			completed++
		}
	}

	var doneTasks int
	for i := range snap.Tasks {
		if snap.Tasks[i].IsDone() {
			doneTasks++
		}
	}

	return Overview{
		TotalProjects:     len(snap.Projects),
		ActiveProjects:    active,
		CompletedProjects: completed,
		TotalTasks:        len(snap.Tasks),
		CompletedTasks:    doneTasks,
		TeamMembers:       teamMembers,
		OnTimeDelivery:    delivery,
	}
}

func buildActivitySummary(tasks []model.Task, bugs []model.Bug) ActivitySummary {
	var summary ActivitySummary
	for i := range tasks {
		switch tasks[i].Status {
		case model.TaskStatusInProgress:
			summary.TasksInProgress++
		case model.TaskStatusReview:
			summary.TasksInReview++
		}
	}
	for i := range bugs {
		if bugs[i].IsOpen() {
			summary.OpenBugs++
			if bugs[i].Severity == model.BugSeverityCritical {
				summary.CriticalBugs++
			}
		}
	}
	return summary
}

func buildBudgetTracking(projects []model.Project) BudgetTracking {
	var estimated, actual float64
	for i := range projects {
		if projects[i].EstimatedBudget != nil {
			estimated += *projects[i].EstimatedBudget
		} else {
			estimated += missingEstimateDefault
		}
		if projects[i].ActualBudget != nil {
			actual += *projects[i].ActualBudget
		} else {
			actual += missingActualDefault
		}
	}

	tracking := BudgetTracking{TotalEstimated: estimated, TotalActual: actual}
	if estimated > 0 {
		tracking.Utilization = roundPct(actual / estimated * 100)
	}
	return tracking
}

func buildDeliverables(projects []model.Project, tasks []model.Task, now time.Time, delivery int) Deliverables {
	d := Deliverables{OnTimeRate: delivery}
	for i := range projects {
		switch {
		case projects[i].IsCompleted():
			d.Completed++
		case projects[i].IsActive():
			d.InProgress++
		}
	}
	for i := range tasks {
		t := &tasks[i]
		if !t.IsDone() && t.DueDate != nil && t.DueDate.After(now) {
			d.Upcoming++
		}
	}
	return d
}
