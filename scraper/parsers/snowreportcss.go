package parsers

import (
	"fmt"

	"opentrail/models"
	"opentrail/scraper"
	"opentrail/utils"
)

// snowReportCSS handles a common trail-report UI shared by several
// mountains (Bolton Valley, Jay Peak, possibly others): lift and trail
// articles grouped into sections, with the trail difficulty carried by
// the section heading.
type snowReportCSS struct {
	page    scraper.PageFetcher
	logger  *utils.Logger
	ratings map[string]models.Rating
}

const (
	srLiftSection  = "section.SnowReport-section--lifts"
	srTrailSection = "section.SnowReport-section--trails"
	srLift         = "article.SnowReport-Lift.SnowReport-feature"
	srTrail        = "article.SnowReport-Trail.SnowReport-feature"
	srTitle        = ".SnowReport-feature-title"
	srLiftStatus   = ".SnowReport-item-status .SnowReport-sr-label"
	srTrailStatus  = ".SnowReport-item-status span"
	srGroomed      = ".pti-groomed"
	srNightSkiing  = ".pti-moon-mining"
)

func newSnowReportCSS(page scraper.PageFetcher, logger *utils.Logger, ratings map[string]models.Rating) *snowReportCSS {
	return &snowReportCSS{page: page, logger: logger, ratings: ratings}
}

func (s *snowReportCSS) Lifts() ([]models.ObservedLift, error) {
	sections, err := s.page.FindElements(srLiftSection)
	if err != nil {
		return nil, fmt.Errorf("snowreportcss: lift sections: %w", err)
	}

	var lifts []models.ObservedLift
	for _, section := range sections {
		articles, err := section.Elements(srLift)
		if err != nil {
			return nil, err
		}
		for _, article := range articles {
			name, err := article.Text(srTitle)
			if err != nil {
				return nil, fmt.Errorf("snowreportcss: lift name: %w", err)
			}
			status, err := article.Text(srLiftStatus)
			if err != nil {
				return nil, fmt.Errorf("snowreportcss: lift status: %w", err)
			}
			lifts = append(lifts, observeLift(name, status))
		}
	}
	s.logger.Debug("[snowreportcss] %d lifts", len(lifts))
	return lifts, nil
}

func (s *snowReportCSS) Trails() ([]models.ObservedTrail, error) {
	sections, err := s.page.FindElements(srTrailSection)
	if err != nil {
		return nil, fmt.Errorf("snowreportcss: trail sections: %w", err)
	}

	var trails []models.ObservedTrail
	for _, section := range sections {
		// The section heading names the difficulty for every trail in it.
		trailType, err := section.Text("h2")
		if err != nil {
			return nil, fmt.Errorf("snowreportcss: section heading: %w", err)
		}
		articles, err := section.Elements(srTrail)
		if err != nil {
			return nil, err
		}
		for _, article := range articles {
			name, err := article.Text(srTitle)
			if err != nil {
				return nil, fmt.Errorf("snowreportcss: trail name: %w", err)
			}
			status, err := article.Text(srTrailStatus)
			if err != nil {
				return nil, fmt.Errorf("snowreportcss: trail status: %w", err)
			}
			trails = append(trails, observeTrail(
				name, trailType, status,
				boolPtr(article.Has(srGroomed)),
				article.Has(srNightSkiing),
				s.ratings,
			))
		}
	}
	s.logger.Debug("[snowreportcss] %d trails", len(trails))
	return trails, nil
}

func (s *snowReportCSS) SnowReport() (*models.SnowReport, error) {
	conditions, err := s.page.FindElement("section.SnowReport-section--conditions")
	if err != nil {
		return nil, fmt.Errorf("snowreportcss: conditions section: %w", err)
	}

	report := &models.SnowReport{}
	if text, err := conditions.Text(".SnowReport-base-depth .SnowReport-value"); err == nil {
		report.BaseLayer = models.ParseInchRange(text)
	}
	// Sites on this UI report one "new snow" figure, covering 24 hours.
	if text, err := conditions.Text(".SnowReport-new-snow .SnowReport-value"); err == nil {
		if recent := models.ParseInchRange(text); recent != nil {
			report.RecentSnow = map[int]*models.InchRange{24: recent}
		}
	}
	if text, err := conditions.Text(".SnowReport-season-total .SnowReport-value"); err == nil {
		report.SeasonSnow = models.ParseInchRange(text)
	}

	if report.BaseLayer == nil && report.RecentSnow == nil && report.SeasonSnow == nil {
		return nil, fmt.Errorf("snowreportcss: no depth values found")
	}
	return report, nil
}

func init() {
	Register("BoltonValley", false, func(page scraper.PageFetcher, logger *utils.Logger) Strategy {
		return newSnowReportCSS(page, logger, map[string]models.Rating{
			"EASIER":              models.RatingGreen,
			"MODERATE":            models.RatingBlue,
			"ADVANCED":            models.RatingBlack,
			"EXTREMELY DIFFICULT": models.RatingDoubleBlack,
			"TERRAIN PARK":        models.RatingTerrainPark,
		})
	})
	Register("JayPeak", false, func(page scraper.PageFetcher, logger *utils.Logger) Strategy {
		return newSnowReportCSS(page, logger, map[string]models.Rating{
			"BEGINNER":           models.RatingGreen,
			"INTERMEDIATE":       models.RatingBlue,
			"ADVANCED":           models.RatingBlack,
			"TERRAIN PARK":       models.RatingTerrainPark,
			"INTERMEDIATE GLADE": models.RatingGlades,
			"ADVANCED GLADE":     models.RatingDoubleGlades,
		})
	})
}
