package reconcile

import (
	"time"

	"opentrail/models"
)

// UpdateResortAggregates recomputes the resort-level counters from the
// freshly observed set. The persisted rows are deliberately not
// consulted: the counts mean "what the site reported this pass", so
// stale rows from earlier passes never leak into them.
func UpdateResortAggregates(resort *models.Resort, lifts []models.ObservedLift, trails []models.ObservedTrail, now time.Time) {
	resort.TotalLifts = len(lifts)
	resort.OpenLifts = 0
	for _, l := range lifts {
		if l.IsOpen {
			resort.OpenLifts++
		}
	}

	resort.TotalTrails = len(trails)
	resort.OpenTrails = 0
	for _, t := range trails {
		if t.IsOpen {
			resort.OpenTrails++
		}
	}

	resort.UpdatedAt = &now
}
