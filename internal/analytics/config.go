// Package analytics computes portfolio dashboard reports from raw project,
// task, and bug records: a weighted health score, risk bands, ROI, on-time
// delivery, strategic actions, and per-project timelines.
package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/harborview/insights-cli/internal/config"
)

// DefaultConfig returns a config.AnalyticsConfig with the legacy dashboard
// heuristics. Weights sum to 1.0.
func DefaultConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		CompletionWeight:  0.30,
		BugSeverityWeight: 0.25,
		VelocityWeight:    0.20,
		StagnationWeight:  0.15,
		WorkloadWeight:    0.10,

		StaleAfterDays: 14,

		HighRiskRatio:   0.30,
		MediumRiskRatio: 0.10,

		MaxActions:   4,
		MaxTimelines: 5,
	}
}

// WeightSum returns the sum of all health factor weights.
func WeightSum(c config.AnalyticsConfig) float64 {
	return c.CompletionWeight + c.BugSeverityWeight + c.VelocityWeight +
		c.StagnationWeight + c.WorkloadWeight
}

// ValidateConfig checks that an AnalyticsConfig is internally consistent.
func ValidateConfig(c config.AnalyticsConfig) error {
	var errs []string

	weights := map[string]float64{
		"completion_weight":   c.CompletionWeight,
		"bug_severity_weight": c.BugSeverityWeight,
		"velocity_weight":     c.VelocityWeight,
		"stagnation_weight":   c.StagnationWeight,
		"workload_weight":     c.WorkloadWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Weights should sum to 1.0 (allow tolerance for floating-point).
	if math.Abs(WeightSum(c)-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.2f", WeightSum(c)))
	}

	if c.StaleAfterDays <= 0 {
		errs = append(errs, "stale_after_days must be > 0")
	}

	if c.MediumRiskRatio <= 0 || c.MediumRiskRatio >= 1 {
		errs = append(errs, "medium_risk_ratio must be between 0 and 1")
	}
	if c.HighRiskRatio <= c.MediumRiskRatio || c.HighRiskRatio >= 1 {
		errs = append(errs, "high_risk_ratio must be between medium_risk_ratio and 1")
	}

	if c.MaxActions < 0 {
		errs = append(errs, "max_actions must be >= 0")
	}
	if c.MaxTimelines < 0 {
		errs = append(errs, "max_timelines must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("analytics: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
