// Package services contains the scrape orchestrator: the sequencing of
// fetch, extraction, reconciliation and commit for one resort, and the
// fan-out across the stale-resort set.
package services

import (
	"fmt"
	"time"

	"opentrail/config"
	"opentrail/models"
	"opentrail/reconcile"
	"opentrail/scraper"
	"opentrail/scraper/parsers"
	"opentrail/storage"
	"opentrail/utils"
)

// ScrapeService runs scrape passes. Failures never cross resort
// boundaries: a resort that fails simply keeps its previous updated_at
// and surfaces as stale data.
type ScrapeService struct {
	cfg     *config.Config
	logger  *utils.Logger
	store   storage.ResortStore
	browser scraper.PageFactory
	static  scraper.PageFactory
	recon   *reconcile.Reconciler
	locks   *utils.LockSet
	retry   *utils.RetryConfig

	now func() time.Time
}

// NewScrapeService creates a ScrapeService. browser serves strategies
// that need a rendered DOM; static serves the server-rendered ones.
func NewScrapeService(cfg *config.Config, logger *utils.Logger, store storage.ResortStore, browser, static scraper.PageFactory) *ScrapeService {
	return &ScrapeService{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		browser: browser,
		static:  static,
		recon:   reconcile.NewReconciler(logger),
		locks:   utils.NewLockSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
		now: time.Now,
	}
}

// ScrapeStale runs one pass over every resort whose updated_at is null
// or older than the staleness window. Per-resort errors are logged and
// swallowed so one broken site never aborts the batch.
func (s *ScrapeService) ScrapeStale() error {
	window := time.Duration(s.cfg.StalenessMinutes) * time.Minute
	cutoff := s.now().Add(-window)

	resorts, err := s.store.StaleResorts(cutoff)
	if err != nil {
		return fmt.Errorf("scrape: select stale resorts: %w", err)
	}
	s.logger.Info("[scrape] %d stale resorts (window %v)", len(resorts), window)

	pool := utils.NewWorkerPool(s.cfg.MaxConcurrency, 0)
	for _, resort := range resorts {
		r := resort
		pool.Submit(func() {
			if err := s.ScrapeResort(r); err != nil {
				s.logger.Error("[scrape] %s failed: %v", r.Name, err)
			}
		})
	}
	pool.Wait()

	return nil
}

// ScrapeByID refreshes a single resort on demand.
func (s *ScrapeService) ScrapeByID(id string) error {
	resort, err := s.store.ResortByID(id)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	return s.ScrapeResort(resort)
}

// ScrapeResort runs the full fetch -> extract -> reconcile -> commit
// sequence for one resort, then the independent snow-report phase.
func (s *ScrapeService) ScrapeResort(resort *models.Resort) error {
	if !s.locks.TryAcquire(resort.ID) {
		s.logger.Warn("[scrape] %s is already being scraped, skipping", resort.Name)
		return nil
	}
	defer s.locks.Release(resort.ID)

	s.logger.Info("[scrape] scraping %s...", resort.Name)

	static, err := parsers.IsStatic(resort.ParserName)
	if err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}
	factory := s.browser
	if static {
		factory = s.static
	}

	page, err := factory.NewPage()
	if err != nil {
		return fmt.Errorf("scrape: %s: new page: %w", resort.Name, err)
	}
	defer page.Close()

	err = s.retry.Do("navigate-"+resort.ID, func() error {
		return page.Navigate(resort.TrailReportURL)
	})
	if err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}

	// Some sites need extra settle time for client-side rendering.
	if resort.AdditionalWaitSeconds > 0 {
		s.logger.Debug("[scrape] %s: additional wait %ds", resort.Name, resort.AdditionalWaitSeconds)
		time.Sleep(time.Duration(resort.AdditionalWaitSeconds) * time.Second)
	}

	strategy, err := parsers.New(resort.ParserName, page, s.logger)
	if err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}

	observedLifts, err := strategy.Lifts()
	if err != nil {
		return fmt.Errorf("scrape: %s: extract lifts: %w", resort.Name, err)
	}
	observedTrails, err := strategy.Trails()
	if err != nil {
		return fmt.Errorf("scrape: %s: extract trails: %w", resort.Name, err)
	}

	persistedLifts, err := s.store.Lifts(resort.ID)
	if err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}
	persistedTrails, err := s.store.Trails(resort.ID)
	if err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}

	now := s.now()
	liftOutcome := s.recon.Lifts(resort.ID, persistedLifts, observedLifts, now)
	trailOutcome := s.recon.Trails(resort.ID, persistedTrails, observedTrails, now)

	if err := s.commit(resort, observedLifts, observedTrails, liftOutcome, trailOutcome, now); err != nil {
		return fmt.Errorf("scrape: %s: %w", resort.Name, err)
	}

	s.logger.Info("[scrape] %s done: lifts %d/%d open, trails %d/%d open (%d inserts, %d updates)",
		resort.Name, resort.OpenLifts, resort.TotalLifts, resort.OpenTrails, resort.TotalTrails,
		len(liftOutcome.Inserts)+len(trailOutcome.Inserts),
		len(liftOutcome.Updates)+len(trailOutcome.Updates))

	// Phase two. A snow-report failure must never roll back the
	// reconciliation that just committed, so errors stop here.
	s.scrapeSnowReport(resort, page, strategy)

	return nil
}

// commit applies both outcomes and the recomputed aggregates in one
// transaction.
func (s *ScrapeService) commit(resort *models.Resort, observedLifts []models.ObservedLift, observedTrails []models.ObservedTrail, liftOutcome *reconcile.LiftOutcome, trailOutcome *reconcile.TrailOutcome, now time.Time) error {
	tx, err := s.store.Begin(resort.ID)
	if err != nil {
		return err
	}

	apply := func() error {
		for _, l := range liftOutcome.Inserts {
			if err := tx.InsertLift(l); err != nil {
				return err
			}
		}
		for _, l := range liftOutcome.Updates {
			if err := tx.UpdateLift(l); err != nil {
				return err
			}
		}
		for _, t := range trailOutcome.Inserts {
			if err := tx.InsertTrail(t); err != nil {
				return err
			}
		}
		for _, t := range trailOutcome.Updates {
			if err := tx.UpdateTrail(t); err != nil {
				return err
			}
		}

		reconcile.UpdateResortAggregates(resort, observedLifts, observedTrails, now)
		return tx.UpdateResort(resort)
	}

	if err := apply(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// scrapeSnowReport attempts the optional snow metrics extraction.
func (s *ScrapeService) scrapeSnowReport(resort *models.Resort, page scraper.PageFetcher, strategy parsers.Strategy) {
	if resort.SnowReportURL != "" && resort.SnowReportURL != resort.TrailReportURL {
		if err := page.Navigate(resort.SnowReportURL); err != nil {
			s.logger.Warn("[scrape] %s: snow report navigate: %v", resort.Name, err)
			return
		}
	}

	report, err := strategy.SnowReport()
	if err != nil {
		s.logger.Warn("[scrape] %s: snow report: %v", resort.Name, err)
		return
	}
	if report == nil {
		return
	}

	if err := s.store.SetSnowReport(resort.ID, report); err != nil {
		s.logger.Error("[scrape] %s: store snow report: %v", resort.Name, err)
		return
	}
	s.logger.Info("[scrape] %s: snow report updated", resort.Name)
}
