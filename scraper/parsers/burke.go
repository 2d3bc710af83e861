package parsers

import (
	"fmt"

	"opentrail/models"
	"opentrail/scraper"
	"opentrail/utils"
)

// burkeMountain parses the Burke Mountain report. The page is plain
// server-rendered tables, so it is registered as a static strategy and
// fetched without a browser. Lift status, trail difficulty and trail
// status all arrive as class names, not text.
type burkeMountain struct {
	page   scraper.PageFetcher
	logger *utils.Logger
}

var burkeRatings = map[string]models.Rating{
	"level-1": models.RatingGreen,
	"level-2": models.RatingBlue,
	"level-3": models.RatingBlack,
	"level-4": models.RatingDoubleBlack,
}

func (b *burkeMountain) Lifts() ([]models.ObservedLift, error) {
	rows, err := b.page.FindElements("div#lifts > table > tbody > tr")
	if err != nil {
		return nil, fmt.Errorf("burke: lift rows: %w", err)
	}

	var lifts []models.ObservedLift
	for _, row := range rows {
		name, err := row.Text(`td[data-label="Lift Name"]`)
		if err != nil {
			return nil, fmt.Errorf("burke: lift name: %w", err)
		}
		status, err := row.Attr(`td[data-label="Status"] > span`, "class")
		if err != nil {
			return nil, fmt.Errorf("burke: lift status: %w", err)
		}
		lifts = append(lifts, observeLift(name, status))
	}
	b.logger.Debug("[burke] %d lifts", len(lifts))
	return lifts, nil
}

func (b *burkeMountain) Trails() ([]models.ObservedTrail, error) {
	rows, err := b.page.FindElements("div#trails > table > tbody > tr")
	if err != nil {
		return nil, fmt.Errorf("burke: trail rows: %w", err)
	}

	var trails []models.ObservedTrail
	for _, row := range rows {
		name, err := row.Text(`td[data-label="Trail Name"] > div.label`)
		if err != nil {
			return nil, fmt.Errorf("burke: trail name: %w", err)
		}
		trailType, err := row.Attr(`td[data-label="Trail Name"] > div.label > span`, "class")
		if err != nil {
			return nil, fmt.Errorf("burke: trail type: %w", err)
		}
		status, err := row.Attr(`td[data-label="Status"] > span`, "class")
		if err != nil {
			return nil, fmt.Errorf("burke: trail status: %w", err)
		}
		groomedClass, err := row.Attr(`td[data-label="Groomed"] > span`, "class")
		if err != nil {
			return nil, fmt.Errorf("burke: trail groomed: %w", err)
		}
		trails = append(trails, observeTrail(
			name, trailType, status,
			boolPtr(groomedClass == "open"),
			false,
			burkeRatings,
		))
	}
	b.logger.Debug("[burke] %d trails", len(trails))
	return trails, nil
}

// SnowReport reads the five depth tallies under div#snow: the 24h, 48h
// and 7-day accumulations, then base depth, then season total.
func (b *burkeMountain) SnowReport() (*models.SnowReport, error) {
	snow, err := b.page.FindElement("div#snow")
	if err != nil {
		return nil, fmt.Errorf("burke: snow report: %w", err)
	}

	tally := func(position int) (*models.InchRange, error) {
		selector := fmt.Sprintf("div.tallys > div.grid:nth-of-type(%d) div.value", position)
		text, err := snow.Text(selector)
		if err != nil {
			return nil, fmt.Errorf("burke: snow tally %d: %w", position, err)
		}
		return models.ParseInchRange(text), nil
	}

	report := &models.SnowReport{RecentSnow: map[int]*models.InchRange{}}
	for hours, position := range map[int]int{24: 1, 48: 2, 24 * 7: 3} {
		r, err := tally(position)
		if err != nil {
			return nil, err
		}
		report.RecentSnow[hours] = r
	}
	if report.BaseLayer, err = tally(4); err != nil {
		return nil, err
	}
	if report.SeasonSnow, err = tally(5); err != nil {
		return nil, err
	}
	return report, nil
}

func init() {
	Register("BurkeMountain", true, func(page scraper.PageFetcher, logger *utils.Logger) Strategy {
		return &burkeMountain{page: page, logger: logger}
	})
}
