package analytics

import (
	"github.com/harborview/insights-cli/internal/model"
)

// OnTimeDeliveryRate returns the percentage of completed projects and done
// tasks that were delivered by their due date. An item is on time when its
// last update happened at or before the due date. With no eligible items the
// rate is vacuously 100.
func OnTimeDeliveryRate(projects []model.Project, tasks []model.Task) int {
	var total, onTime int

	for i := range projects {
		p := &projects[i]
		if !p.IsCompleted() || p.TargetEndDate == nil {
			continue
		}
		total++
		if !p.UpdatedAt.After(*p.TargetEndDate) {
			onTime++
		}
	}

	for i := range tasks {
		t := &tasks[i]
		if !t.IsDone() || t.DueDate == nil {
			continue
		}
		total++
		if !t.UpdatedAt.After(*t.DueDate) {
			onTime++
		}
	}

	if total == 0 {
		return 100
	}
	return roundPct(float64(onTime) / float64(total) * 100)
}
