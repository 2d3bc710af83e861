package models

import "time"

// Resort is a ski area whose trail and lift status is tracked.
// Aggregate counters are recomputed from the freshly observed set after
// every successful scrape; they never drift with individual row updates.
type Resort struct {
	ID                    string
	Name                  string
	City                  string
	State                 string
	ParserName            string
	TrailReportURL        string
	SnowReportURL         string
	AdditionalWaitSeconds int

	TotalLifts  int
	OpenLifts   int
	TotalTrails int
	OpenTrails  int

	SnowReport *SnowReport
	UpdatedAt  *time.Time
}
