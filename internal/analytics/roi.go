package analytics

import (
	"github.com/harborview/insights-cli/internal/model"
)

// ROI reports realized return on investment for the portfolio.
type ROI struct {
	CurrentROI int `json:"currentROI"`
	// Placeholder fields pending a real financial data source.
	ExpectedROI     int    `json:"expectedROI"`
	TrendDirection  string `json:"trendDirection"`
	QuarterlyGrowth int    `json:"quarterlyGrowth"`
}

const (
	// missingEstimateDefault stands in for projects filed without a budget
	// estimate. Note: the budget tracking section uses its own, different
	// default for missing actuals; the two call sites are deliberately not
	// unified.
	missingEstimateDefault = 50000.0

	// realizedValueMarkup converts actual spend to realized business value.
	realizedValueMarkup = 1.5

	// Placeholders pending a real financial data source.
	expectedROIPct     = 22
	quarterlyGrowthPct = 8
	roiTrendDirection  = "up"
)

// ComputeROI derives current ROI from estimated investment vs. realized
// value. Missing estimates default to 50000; missing actuals count as zero
// spend. Zero total investment yields an ROI of 0 rather than a division
// by zero.
func ComputeROI(projects []model.Project) ROI {
	var investment, spend float64
	for i := range projects {
		if projects[i].EstimatedBudget != nil {
			investment += *projects[i].EstimatedBudget
		} else {
			investment += missingEstimateDefault
		}
		if projects[i].ActualBudget != nil {
			spend += *projects[i].ActualBudget
		}
	}

	roi := ROI{
		ExpectedROI:     expectedROIPct,
		TrendDirection:  roiTrendDirection,
		QuarterlyGrowth: quarterlyGrowthPct,
	}
	if investment == 0 {
		return roi
	}

	value := spend * realizedValueMarkup
	roi.CurrentROI = roundPct((value - investment) / investment * 100)
	return roi
}
