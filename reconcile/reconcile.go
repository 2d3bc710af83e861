// Package reconcile merges freshly scraped lift and trail observations
// into the persisted rows for a resort. It is an upsert by derived key
// with field-level change tracking; the only field whose change carries
// a side effect is is_open, which stamps the open/closed transition
// dates used for history.
package reconcile

import (
	"time"

	"github.com/google/uuid"

	"opentrail/models"
	"opentrail/utils"
)

// FieldChange records one mutated field as an (old, new) pair.
type FieldChange struct {
	Field string
	Old   any
	New   any
}

// Transition records an is_open flip detected during a pass.
type Transition struct {
	UniqueName string
	Opened     bool
	On         time.Time
}

// LiftOutcome is the result of reconciling one resort's lifts.
type LiftOutcome struct {
	Inserts     []*models.Lift
	Updates     []*models.Lift
	Changes     map[string][]FieldChange
	Transitions []Transition
}

// TrailOutcome is the result of reconciling one resort's trails.
type TrailOutcome struct {
	Inserts     []*models.Trail
	Updates     []*models.Trail
	Changes     map[string][]FieldChange
	Transitions []Transition
}

// Reconciler computes inserts and updates from observed vs. persisted
// entities. It never touches the store itself; callers apply the
// outcome inside one per-resort transaction.
type Reconciler struct {
	logger *utils.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(logger *utils.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// liftLookup maps unique_name to the persisted row. Within one scrape a
// duplicate key is last-write-wins; a true duplicate on one page is a
// parser bug, not data to repair here.
func liftLookup(persisted []*models.Lift) map[string]*models.Lift {
	lookup := make(map[string]*models.Lift, len(persisted))
	for _, l := range persisted {
		lookup[l.UniqueName] = l
	}
	return lookup
}

func trailLookup(persisted []*models.Trail) map[string]*models.Trail {
	lookup := make(map[string]*models.Trail, len(persisted))
	for _, t := range persisted {
		lookup[t.UniqueName] = t
	}
	return lookup
}

// Lifts reconciles observed lifts against persisted rows. Persisted
// lifts absent from the observed set are left untouched.
func (r *Reconciler) Lifts(resortID string, persisted []*models.Lift, observed []models.ObservedLift, now time.Time) *LiftOutcome {
	out := &LiftOutcome{Changes: make(map[string][]FieldChange)}
	lookup := liftLookup(persisted)

	for _, obs := range observed {
		key := obs.UniqueKey()
		match, ok := lookup[key]
		if !ok {
			lift := &models.Lift{
				ID:         uuid.NewString(),
				ResortID:   resortID,
				Name:       obs.Name,
				UniqueName: key,
				Status:     obs.Status,
				IsOpen:     obs.IsOpen,
				UpdatedAt:  now,
			}
			r.logger.Info("[reconcile] new lift: %s", key)
			out.Inserts = append(out.Inserts, lift)
			continue
		}

		var changes []FieldChange
		if match.Status != obs.Status {
			changes = append(changes, FieldChange{"status", match.Status, obs.Status})
		}
		if match.IsOpen != obs.IsOpen {
			changes = append(changes, FieldChange{"is_open", match.IsOpen, obs.IsOpen})
		}
		if len(changes) == 0 {
			continue
		}

		if match.IsOpen != obs.IsOpen {
			stampTransition(&match.LastOpenedOn, &match.LastClosedOn, obs.IsOpen, now)
			out.Transitions = append(out.Transitions, Transition{
				UniqueName: key,
				Opened:     obs.IsOpen,
				On:         dateOf(now),
			})
		}
		match.Status = obs.Status
		match.IsOpen = obs.IsOpen
		match.UpdatedAt = now

		r.logger.Info("[reconcile] update lift %s: %v", key, changes)
		out.Updates = append(out.Updates, match)
		out.Changes[key] = changes
	}

	return out
}

// Trails reconciles observed trails against persisted rows, mirroring
// Lifts with the trail-only fields added to the diff.
func (r *Reconciler) Trails(resortID string, persisted []*models.Trail, observed []models.ObservedTrail, now time.Time) *TrailOutcome {
	out := &TrailOutcome{Changes: make(map[string][]FieldChange)}
	lookup := trailLookup(persisted)

	for _, obs := range observed {
		key := obs.UniqueKey()
		match, ok := lookup[key]
		if !ok {
			trail := &models.Trail{
				ID:          uuid.NewString(),
				ResortID:    resortID,
				Name:        obs.Name,
				UniqueName:  key,
				TrailType:   obs.TrailType,
				Status:      obs.Status,
				IsOpen:      obs.IsOpen,
				Rating:      obs.Rating,
				Groomed:     obs.Groomed,
				NightSkiing: obs.NightSkiing,
				UpdatedAt:   now,
			}
			r.logger.Info("[reconcile] new trail: %s", key)
			out.Inserts = append(out.Inserts, trail)
			continue
		}

		changes := diffTrail(match, obs)
		if len(changes) == 0 {
			continue
		}

		if match.IsOpen != obs.IsOpen {
			stampTransition(&match.LastOpenedOn, &match.LastClosedOn, obs.IsOpen, now)
			out.Transitions = append(out.Transitions, Transition{
				UniqueName: key,
				Opened:     obs.IsOpen,
				On:         dateOf(now),
			})
		}
		match.Status = obs.Status
		match.IsOpen = obs.IsOpen
		match.TrailType = obs.TrailType
		match.Rating = obs.Rating
		match.Groomed = obs.Groomed
		match.NightSkiing = obs.NightSkiing
		match.UpdatedAt = now

		r.logger.Info("[reconcile] update trail %s: %v", key, changes)
		out.Updates = append(out.Updates, match)
		out.Changes[key] = changes
	}

	return out
}

func diffTrail(match *models.Trail, obs models.ObservedTrail) []FieldChange {
	var changes []FieldChange
	if match.Status != obs.Status {
		changes = append(changes, FieldChange{"status", match.Status, obs.Status})
	}
	if match.IsOpen != obs.IsOpen {
		changes = append(changes, FieldChange{"is_open", match.IsOpen, obs.IsOpen})
	}
	if match.TrailType != obs.TrailType {
		changes = append(changes, FieldChange{"trail_type", match.TrailType, obs.TrailType})
	}
	if match.Rating != obs.Rating {
		changes = append(changes, FieldChange{"rating", match.Rating, obs.Rating})
	}
	if !boolPtrEqual(match.Groomed, obs.Groomed) {
		changes = append(changes, FieldChange{"groomed", match.Groomed, obs.Groomed})
	}
	if match.NightSkiing != obs.NightSkiing {
		changes = append(changes, FieldChange{"night_skiing", match.NightSkiing, obs.NightSkiing})
	}
	return changes
}

// stampTransition records the date of an is_open flip. Only the side of
// the transition that was entered is stamped; the other date keeps its
// previous value.
func stampTransition(lastOpened, lastClosed **time.Time, nowOpen bool, now time.Time) {
	d := dateOf(now)
	if nowOpen {
		*lastOpened = &d
	} else {
		*lastClosed = &d
	}
}

func dateOf(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
