package parsers

import (
	"fmt"

	"opentrail/models"
	"opentrail/scraper"
	"opentrail/utils"
)

// cannonMountain parses the Cannon Mountain conditions page. Status is
// conveyed purely by icon classes, so open/closed is derived from the
// presence of the open icon rather than any text.
type cannonMountain struct {
	page   scraper.PageFetcher
	logger *utils.Logger
}

var cannonRatings = map[string]models.Rating{
	"Easiest":        models.RatingGreen,
	"More Difficult": models.RatingBlue,
	"Most Difficult": models.RatingBlack,
	"Expert":         models.RatingDoubleBlack,
	"Glade":          models.RatingDoubleGlades,
	"Terrain Park":   models.RatingTerrainPark,
}

func (c *cannonMountain) Lifts() ([]models.ObservedLift, error) {
	rows, err := c.page.FindElements("tr.lift-data")
	if err != nil {
		return nil, fmt.Errorf("cannon: lift rows: %w", err)
	}

	var lifts []models.ObservedLift
	for _, row := range rows {
		name, err := row.Text(".lift-name")
		if err != nil {
			return nil, fmt.Errorf("cannon: lift name: %w", err)
		}
		lifts = append(lifts, observeLift(name, cannonStatus(row)))
	}
	c.logger.Debug("[cannon] %d lifts", len(lifts))
	return lifts, nil
}

func (c *cannonMountain) Trails() ([]models.ObservedTrail, error) {
	rows, err := c.page.FindElements("tr.trail-data")
	if err != nil {
		return nil, fmt.Errorf("cannon: trail rows: %w", err)
	}

	var trails []models.ObservedTrail
	for _, row := range rows {
		name, err := row.Text("td.trail-name")
		if err != nil {
			return nil, fmt.Errorf("cannon: trail name: %w", err)
		}
		trailType, err := row.Attr("td.difficulty > img", "alt")
		if err != nil {
			return nil, fmt.Errorf("cannon: trail type: %w", err)
		}
		trails = append(trails, observeTrail(
			name, trailType, cannonStatus(row),
			boolPtr(row.Has("td.groomed > img.groomed")),
			false,
			cannonRatings,
		))
	}
	c.logger.Debug("[cannon] %d trails", len(trails))
	return trails, nil
}

// Cannon treats lifts and trails identically in terms of status.
func cannonStatus(row scraper.Element) string {
	if row.Has(".icon.open") {
		return "Open"
	}
	return "Closed"
}

func (c *cannonMountain) SnowReport() (*models.SnowReport, error) {
	return nil, nil
}

func init() {
	Register("CannonMountain", false, func(page scraper.PageFetcher, logger *utils.Logger) Strategy {
		return &cannonMountain{page: page, logger: logger}
	})
}
