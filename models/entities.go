package models

import (
	"strings"
	"time"
)

// Lift is a persisted mechanical lift at a resort. Rows are created the
// first time a lift is observed and updated in place afterwards; a lift
// missing from a scrape pass is left stale, never deleted.
type Lift struct {
	ID         string
	ResortID   string
	Name       string
	UniqueName string
	Status     string
	IsOpen     bool

	LastOpenedOn *time.Time
	LastClosedOn *time.Time
	UpdatedAt    time.Time
}

// Trail is a persisted ski trail at a resort. TrailType carries the
// site's own difficulty wording; Rating is the normalized form.
type Trail struct {
	ID          string
	ResortID    string
	Name        string
	UniqueName  string
	TrailType   string
	Status      string
	IsOpen      bool
	Rating      Rating
	Groomed     *bool
	NightSkiing bool

	LastOpenedOn *time.Time
	LastClosedOn *time.Time
	UpdatedAt    time.Time
}

// ObservedLift is the ephemeral output of an extraction strategy for one
// lift on one scrape pass. IDs and timestamps are assigned during
// reconciliation.
type ObservedLift struct {
	Name   string
	Status string
	IsOpen bool
}

// UniqueKey returns the identity key used to match this observation
// against persisted rows. Lift names are assumed unique per resort.
func (o ObservedLift) UniqueKey() string {
	return UniqueName(o.Name, "")
}

// ObservedTrail is the ephemeral output of an extraction strategy for
// one trail on one scrape pass. A nil Groomed means the site does not
// report grooming.
type ObservedTrail struct {
	Name        string
	TrailType   string
	Status      string
	IsOpen      bool
	Rating      Rating
	Groomed     *bool
	NightSkiing bool
}

// UniqueKey returns the identity key for this observation. The trail
// type is folded in because distinct trails at one resort legitimately
// share a bare name across classifications (a run and its glade).
func (o ObservedTrail) UniqueKey() string {
	return UniqueName(o.Name, o.TrailType)
}

// UniqueName composes the stable identity key for an entity from its
// name and an optional type discriminant.
func UniqueName(name, discriminant string) string {
	if discriminant == "" {
		return name
	}
	return name + "_" + discriminant
}

// IsOpenStatus derives the boolean open flag from a raw status string.
// The rule is a strict lowercase equality: anything that is not exactly
// "open" (closed, hold, partially open) counts as not open.
func IsOpenStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == "open"
}
