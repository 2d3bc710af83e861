package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"opentrail/models"
)

func TestUpdateResortAggregates(t *testing.T) {
	resort := &models.Resort{ID: "rst", Name: "Test Mountain"}
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	lifts := []models.ObservedLift{
		{Name: "A", IsOpen: true},
		{Name: "B", IsOpen: false},
		{Name: "C", IsOpen: true},
	}
	trails := []models.ObservedTrail{
		{Name: "T1", IsOpen: true},
		{Name: "T2", IsOpen: false},
	}

	UpdateResortAggregates(resort, lifts, trails, now)

	require.Equal(t, 3, resort.TotalLifts)
	require.Equal(t, 2, resort.OpenLifts)
	require.Equal(t, 2, resort.TotalTrails)
	require.Equal(t, 1, resort.OpenTrails)
	require.Equal(t, now, *resort.UpdatedAt)
}

// Counts come from the observed set alone; values left over from a
// previous pass must be fully overwritten, including down to zero.
func TestUpdateResortAggregatesOverwritesStaleCounts(t *testing.T) {
	now := time.Now()
	resort := &models.Resort{
		ID: "rst", TotalLifts: 10, OpenLifts: 8, TotalTrails: 40, OpenTrails: 35,
	}

	UpdateResortAggregates(resort, nil, nil, now)

	require.Zero(t, resort.TotalLifts)
	require.Zero(t, resort.OpenLifts)
	require.Zero(t, resort.TotalTrails)
	require.Zero(t, resort.OpenTrails)
}
