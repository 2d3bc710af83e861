package storage

import (
	"time"

	"opentrail/models"
)

// ResortStore is what the scrape orchestrator and the read API need
// from the persistence layer.
type ResortStore interface {
	Resorts() ([]*models.Resort, error)
	ResortByID(id string) (*models.Resort, error)
	// StaleResorts returns resorts never scraped or last scraped before
	// the cutoff.
	StaleResorts(cutoff time.Time) ([]*models.Resort, error)
	Lifts(resortID string) ([]*models.Lift, error)
	Trails(resortID string) ([]*models.Trail, error)
	// Begin opens the per-resort transaction one reconciliation pass
	// commits through.
	Begin(resortID string) (ScrapeTx, error)
	// SetSnowReport runs outside the scrape transaction: the snow phase
	// must not roll back an already-committed reconciliation.
	SetSnowReport(resortID string, report *models.SnowReport) error
}

// ScrapeTx is one resort's reconciliation transaction. Either every
// insert/update of a pass commits or none do.
type ScrapeTx interface {
	InsertLift(*models.Lift) error
	UpdateLift(*models.Lift) error
	InsertTrail(*models.Trail) error
	UpdateTrail(*models.Trail) error
	UpdateResort(*models.Resort) error
	Commit() error
	Rollback() error
}

// UserStore backs the API's user registration and login.
type UserStore interface {
	CreateUser(user *models.User) error
	UserByEmail(email string) (*models.User, error)
}
