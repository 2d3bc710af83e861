package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"opentrail/config"
	"opentrail/models"
	"opentrail/scraper"
	"opentrail/scraper/parsers"
	"opentrail/storage"
	"opentrail/utils"
)

// fakePage satisfies scraper.PageFetcher; the registered fake
// strategies never touch the page, so only Navigate matters.
type fakePage struct {
	navigateErr error
	visited     []string
}

func (p *fakePage) Navigate(url string) error {
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) FindElements(string) ([]scraper.Element, error) { return nil, nil }
func (p *fakePage) FindElement(string) (scraper.Element, error) {
	return nil, scraper.ErrNoElement
}
func (p *fakePage) Close() error { return nil }

type fakeFactory struct {
	page *fakePage
}

func (f *fakeFactory) NewPage() (scraper.PageFetcher, error) { return f.page, nil }

// fakeStrategy returns canned observations, or fails, per resort.
type fakeStrategy struct {
	lifts    []models.ObservedLift
	trails   []models.ObservedTrail
	snow     *models.SnowReport
	liftsErr error
}

func (s *fakeStrategy) Lifts() ([]models.ObservedLift, error) {
	if s.liftsErr != nil {
		return nil, s.liftsErr
	}
	return s.lifts, nil
}
func (s *fakeStrategy) Trails() ([]models.ObservedTrail, error) { return s.trails, nil }
func (s *fakeStrategy) SnowReport() (*models.SnowReport, error) { return s.snow, nil }

// fakeTx records applied writes and only copies them into the store on
// Commit, mirroring the transactional contract.
type fakeTx struct {
	store      *fakeStore
	resortID   string
	lifts      []*models.Lift
	trails     []*models.Trail
	resort     *models.Resort
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) InsertLift(l *models.Lift) error   { tx.lifts = append(tx.lifts, l); return nil }
func (tx *fakeTx) UpdateLift(l *models.Lift) error   { tx.lifts = append(tx.lifts, l); return nil }
func (tx *fakeTx) InsertTrail(t *models.Trail) error { tx.trails = append(tx.trails, t); return nil }
func (tx *fakeTx) UpdateTrail(t *models.Trail) error { tx.trails = append(tx.trails, t); return nil }
func (tx *fakeTx) UpdateResort(r *models.Resort) error {
	tx.resort = r
	return nil
}

func (tx *fakeTx) Commit() error {
	tx.committed = true
	tx.store.committed[tx.resortID] = append(tx.store.committed[tx.resortID], tx)
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.rolledBack = true
	return nil
}

type fakeStore struct {
	resorts   []*models.Resort
	lifts     map[string][]*models.Lift
	trails    map[string][]*models.Trail
	committed map[string][]*fakeTx
	snow      map[string]*models.SnowReport
}

func newFakeStore(resorts ...*models.Resort) *fakeStore {
	return &fakeStore{
		resorts:   resorts,
		lifts:     map[string][]*models.Lift{},
		trails:    map[string][]*models.Trail{},
		committed: map[string][]*fakeTx{},
		snow:      map[string]*models.SnowReport{},
	}
}

func (s *fakeStore) Resorts() ([]*models.Resort, error) { return s.resorts, nil }

func (s *fakeStore) ResortByID(id string) (*models.Resort, error) {
	for _, r := range s.resorts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) StaleResorts(time.Time) ([]*models.Resort, error) { return s.resorts, nil }

func (s *fakeStore) Lifts(resortID string) ([]*models.Lift, error)   { return s.lifts[resortID], nil }
func (s *fakeStore) Trails(resortID string) ([]*models.Trail, error) { return s.trails[resortID], nil }

func (s *fakeStore) Begin(resortID string) (storage.ScrapeTx, error) {
	return &fakeTx{store: s, resortID: resortID}, nil
}

func (s *fakeStore) SetSnowReport(resortID string, report *models.SnowReport) error {
	s.snow[resortID] = report
	return nil
}

func newTestService(store storage.ResortStore) *ScrapeService {
	cfg := &config.Config{MaxConcurrency: 1, MaxRetries: 1, StalenessMinutes: 10}
	logger := utils.NewLogger()
	factory := &fakeFactory{page: &fakePage{}}
	svc := NewScrapeService(cfg, logger, store, factory, factory)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func init() {
	parsers.Register("testHealthy", false, func(scraper.PageFetcher, *utils.Logger) parsers.Strategy {
		return &fakeStrategy{
			lifts: []models.ObservedLift{
				{Name: "Quad", Status: "Open", IsOpen: true},
			},
			trails: []models.ObservedTrail{
				{Name: "Cruiser", TrailType: "blue", Status: "open", IsOpen: true},
				{Name: "Wall", TrailType: "black", Status: "closed", IsOpen: false},
			},
		}
	})
	parsers.Register("testBroken", false, func(scraper.PageFetcher, *utils.Logger) parsers.Strategy {
		return &fakeStrategy{liftsErr: errors.New("expected element missing")}
	})
	parsers.Register("testSnowy", false, func(scraper.PageFetcher, *utils.Logger) parsers.Strategy {
		six := 6
		return &fakeStrategy{
			snow: &models.SnowReport{
				RecentSnow: map[int]*models.InchRange{24: {Inches: &six}},
			},
		}
	})
}

func TestScrapeResortCommitsReconciliation(t *testing.T) {
	resort := &models.Resort{ID: "r1", Name: "Healthy", ParserName: "testHealthy", TrailReportURL: "https://healthy.test/report"}
	store := newFakeStore(resort)
	svc := newTestService(store)

	require.NoError(t, svc.ScrapeResort(resort))

	txs := store.committed["r1"]
	require.Len(t, txs, 1)
	require.Len(t, txs[0].lifts, 1)
	require.Len(t, txs[0].trails, 2)

	require.Equal(t, 1, resort.TotalLifts)
	require.Equal(t, 1, resort.OpenLifts)
	require.Equal(t, 2, resort.TotalTrails)
	require.Equal(t, 1, resort.OpenTrails)
	require.NotNil(t, resort.UpdatedAt)
}

func TestBatchIsolatesFailedResort(t *testing.T) {
	r1 := &models.Resort{ID: "r1", Name: "First", ParserName: "testHealthy", TrailReportURL: "https://one.test"}
	r2 := &models.Resort{ID: "r2", Name: "Second", ParserName: "testBroken", TrailReportURL: "https://two.test"}
	r3 := &models.Resort{ID: "r3", Name: "Third", ParserName: "testHealthy", TrailReportURL: "https://three.test"}
	store := newFakeStore(r1, r2, r3)
	svc := newTestService(store)

	require.NoError(t, svc.ScrapeStale())

	require.Len(t, store.committed["r1"], 1)
	require.Empty(t, store.committed["r2"])
	require.Len(t, store.committed["r3"], 1)

	// The failed resort keeps its previous updated_at (never scraped:
	// still nil) and surfaces as stale data, not an API error.
	require.Nil(t, r2.UpdatedAt)
	require.NotNil(t, r1.UpdatedAt)
	require.NotNil(t, r3.UpdatedAt)
}

func TestUnknownParserFailsTheResortOnly(t *testing.T) {
	resort := &models.Resort{ID: "r1", Name: "Mystery", ParserName: "testUnregistered", TrailReportURL: "https://x.test"}
	store := newFakeStore(resort)
	svc := newTestService(store)

	err := svc.ScrapeResort(resort)
	require.ErrorIs(t, err, parsers.ErrUnknownParser)
	require.Empty(t, store.committed["r1"])
}

func TestSnowReportStoredOutsideScrapeTx(t *testing.T) {
	resort := &models.Resort{ID: "r1", Name: "Snowy", ParserName: "testSnowy", TrailReportURL: "https://snowy.test"}
	store := newFakeStore(resort)
	svc := newTestService(store)

	require.NoError(t, svc.ScrapeResort(resort))

	require.NotNil(t, store.snow["r1"])
	require.Equal(t, 6, *store.snow["r1"].RecentSnow[24].Inches)
}

func TestOverlappingScrapeIsSkipped(t *testing.T) {
	resort := &models.Resort{ID: "r1", Name: "Busy", ParserName: "testHealthy", TrailReportURL: "https://busy.test"}
	store := newFakeStore(resort)
	svc := newTestService(store)

	require.True(t, svc.locks.TryAcquire("r1"))
	defer svc.locks.Release("r1")

	require.NoError(t, svc.ScrapeResort(resort))
	require.Empty(t, store.committed["r1"])
}

func TestIdempotentSecondPass(t *testing.T) {
	resort := &models.Resort{ID: "r1", Name: "Healthy", ParserName: "testHealthy", TrailReportURL: "https://healthy.test"}
	store := newFakeStore(resort)
	svc := newTestService(store)

	require.NoError(t, svc.ScrapeResort(resort))
	first := store.committed["r1"][0]

	// Feed the committed rows back as persisted state.
	var lifts []*models.Lift
	lifts = append(lifts, first.lifts...)
	var trails []*models.Trail
	trails = append(trails, first.trails...)
	store.lifts["r1"] = lifts
	store.trails["r1"] = trails

	require.NoError(t, svc.ScrapeResort(resort))
	second := store.committed["r1"][1]
	require.Empty(t, second.lifts)
	require.Empty(t, second.trails)

	// Aggregates and updated_at are still refreshed on a no-op pass.
	require.NotNil(t, second.resort)
}
