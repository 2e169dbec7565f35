package analytics

import (
	"time"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// RiskLevel is a categorical risk band.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment classifies portfolio risk across four categories plus an
// unbounded numeric severity indicator.
type RiskAssessment struct {
	BudgetRisk   RiskLevel `json:"budgetRisk"`
	TimelineRisk RiskLevel `json:"timelineRisk"`
	QualityRisk  RiskLevel `json:"qualityRisk"`
	ResourceRisk RiskLevel `json:"resourceRisk"`
	// OverallRiskScore is (overBudget + delayed + criticalBugs) x 5, a
	// linear severity indicator rather than a percentage.
	OverallRiskScore int `json:"overallRiskScore"`
}

// AssessRisk computes the budget, timeline, and quality risk bands for a
// portfolio. Budget and timeline bands come from bad-project ratios; quality
// uses the absolute count of open critical bugs, an asymmetry inherited from
// the legacy dashboards.
func AssessRisk(projects []model.Project, bugs []model.Bug, now time.Time, cfg config.AnalyticsConfig) RiskAssessment {
	var overBudget, delayed int
	for i := range projects {
		if projects[i].OverBudget() {
			overBudget++
		}
		if projects[i].PastDue(now) {
			delayed++
		}
	}

	var criticalOpen int
	for i := range bugs {
		if bugs[i].IsOpenCritical() {
			criticalOpen++
		}
	}

	return RiskAssessment{
		BudgetRisk:   ratioBand(overBudget, len(projects), cfg),
		TimelineRisk: ratioBand(delayed, len(projects), cfg),
		QualityRisk:  qualityBand(criticalOpen),
		// Placeholder: no staffing or allocation data reaches this engine yet.
		ResourceRisk:     RiskLow,
		OverallRiskScore: (overBudget + delayed + criticalOpen) * 5,
	}
}

// ratioBand classifies count/total against the configured thresholds.
// Zero projects means zero risk, not a division by zero.
func ratioBand(count, total int, cfg config.AnalyticsConfig) RiskLevel {
	if total == 0 {
		return RiskLow
	}
	ratio := float64(count) / float64(total)
	switch {
	case ratio > cfg.HighRiskRatio:
		return RiskHigh
	case ratio > cfg.MediumRiskRatio:
		return RiskMedium
	default:
		return RiskLow
	}
}

// qualityBand classifies the absolute count of open critical bugs.
func qualityBand(criticalOpen int) RiskLevel {
	switch {
	case criticalOpen > 5:
		return RiskHigh
	case criticalOpen > 1:
		return RiskMedium
	default:
		return RiskLow
	}
}
