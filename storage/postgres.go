package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"opentrail/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("postgres: not found")

// Postgres implements ResortStore and UserStore on database/sql.
type Postgres struct {
	db *sql.DB
}

// New opens a connection to PostgreSQL, runs schema migrations, and
// returns a ready-to-use store.
func New(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pg := &Postgres{db: db}
	if err := pg.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pg, nil
}

func (pg *Postgres) migrate() error {
	_, err := pg.db.Exec(`
		CREATE TABLE IF NOT EXISTS resorts (
			id                      TEXT PRIMARY KEY,
			name                    TEXT NOT NULL,
			city                    TEXT NOT NULL DEFAULT '',
			state                   TEXT NOT NULL DEFAULT '',
			parser_name             TEXT NOT NULL,
			trail_report_url        TEXT NOT NULL,
			snow_report_url         TEXT NOT NULL DEFAULT '',
			additional_wait_seconds INT  NOT NULL DEFAULT 0,
			total_lifts             INT  NOT NULL DEFAULT 0,
			open_lifts              INT  NOT NULL DEFAULT 0,
			total_trails            INT  NOT NULL DEFAULT 0,
			open_trails             INT  NOT NULL DEFAULT 0,
			snow_report             JSONB,
			updated_at              TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS lifts (
			id             TEXT PRIMARY KEY,
			resort_id      TEXT NOT NULL REFERENCES resorts(id),
			name           TEXT NOT NULL,
			unique_name    TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT '',
			is_open        BOOLEAN NOT NULL DEFAULT FALSE,
			last_opened_on DATE,
			last_closed_on DATE,
			updated_at     TIMESTAMPTZ NOT NULL,
			UNIQUE (resort_id, unique_name)
		);

		CREATE TABLE IF NOT EXISTS trails (
			id             TEXT PRIMARY KEY,
			resort_id      TEXT NOT NULL REFERENCES resorts(id),
			name           TEXT NOT NULL,
			unique_name    TEXT NOT NULL,
			trail_type     TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT '',
			is_open        BOOLEAN NOT NULL DEFAULT FALSE,
			rating         INT,
			groomed        BOOLEAN,
			night_skiing   BOOLEAN NOT NULL DEFAULT FALSE,
			last_opened_on DATE,
			last_closed_on DATE,
			updated_at     TIMESTAMPTZ NOT NULL,
			UNIQUE (resort_id, unique_name)
		);

		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			email           TEXT UNIQUE NOT NULL,
			email_verified  BOOLEAN NOT NULL DEFAULT FALSE,
			hashed_password TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_lifts_resort  ON lifts(resort_id);
		CREATE INDEX IF NOT EXISTS idx_trails_resort ON trails(resort_id);
		CREATE INDEX IF NOT EXISTS idx_resorts_updated_at ON resorts(updated_at);
	`)
	return err
}

// Close closes the underlying connection pool.
func (pg *Postgres) Close() error {
	return pg.db.Close()
}

const resortColumns = `id, name, city, state, parser_name, trail_report_url,
	snow_report_url, additional_wait_seconds, total_lifts, open_lifts,
	total_trails, open_trails, snow_report, updated_at`

// Resorts returns all resorts ordered by name.
func (pg *Postgres) Resorts() ([]*models.Resort, error) {
	rows, err := pg.db.Query(`SELECT ` + resortColumns + ` FROM resorts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: resorts: %w", err)
	}
	defer rows.Close()
	return scanResorts(rows)
}

// ResortByID returns one resort or ErrNotFound.
func (pg *Postgres) ResortByID(id string) (*models.Resort, error) {
	rows, err := pg.db.Query(`SELECT `+resortColumns+` FROM resorts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: resort %s: %w", id, err)
	}
	defer rows.Close()

	resorts, err := scanResorts(rows)
	if err != nil {
		return nil, err
	}
	if len(resorts) == 0 {
		return nil, fmt.Errorf("%w: resort %s", ErrNotFound, id)
	}
	return resorts[0], nil
}

// StaleResorts returns resorts due for a scrape pass.
func (pg *Postgres) StaleResorts(cutoff time.Time) ([]*models.Resort, error) {
	rows, err := pg.db.Query(`
		SELECT `+resortColumns+` FROM resorts
		WHERE updated_at IS NULL OR updated_at < $1
		ORDER BY name ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postgres: stale resorts: %w", err)
	}
	defer rows.Close()
	return scanResorts(rows)
}

func scanResorts(rows *sql.Rows) ([]*models.Resort, error) {
	var resorts []*models.Resort
	for rows.Next() {
		r := &models.Resort{}
		var snowReport []byte
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.Name, &r.City, &r.State, &r.ParserName, &r.TrailReportURL,
			&r.SnowReportURL, &r.AdditionalWaitSeconds, &r.TotalLifts, &r.OpenLifts,
			&r.TotalTrails, &r.OpenTrails, &snowReport, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan resort: %w", err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			r.UpdatedAt = &t
		}
		if len(snowReport) > 0 {
			report := &models.SnowReport{}
			if err := json.Unmarshal(snowReport, report); err != nil {
				return nil, fmt.Errorf("postgres: decode snow report: %w", err)
			}
			r.SnowReport = report
		}
		resorts = append(resorts, r)
	}
	return resorts, rows.Err()
}

// Lifts returns a resort's lifts, open first then by name, the order
// the API serves them in.
func (pg *Postgres) Lifts(resortID string) ([]*models.Lift, error) {
	rows, err := pg.db.Query(`
		SELECT id, resort_id, name, unique_name, status, is_open,
		       last_opened_on, last_closed_on, updated_at
		FROM lifts
		WHERE resort_id = $1
		ORDER BY is_open DESC, name ASC
	`, resortID)
	if err != nil {
		return nil, fmt.Errorf("postgres: lifts for %s: %w", resortID, err)
	}
	defer rows.Close()

	var lifts []*models.Lift
	for rows.Next() {
		l := &models.Lift{}
		var opened, closed sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.ResortID, &l.Name, &l.UniqueName, &l.Status, &l.IsOpen,
			&opened, &closed, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan lift: %w", err)
		}
		l.LastOpenedOn = nullableTime(opened)
		l.LastClosedOn = nullableTime(closed)
		lifts = append(lifts, l)
	}
	return lifts, rows.Err()
}

// Trails returns a resort's trails ordered by rating, open flag, name.
func (pg *Postgres) Trails(resortID string) ([]*models.Trail, error) {
	rows, err := pg.db.Query(`
		SELECT id, resort_id, name, unique_name, trail_type, status, is_open,
		       rating, groomed, night_skiing, last_opened_on, last_closed_on, updated_at
		FROM trails
		WHERE resort_id = $1
		ORDER BY rating ASC, is_open DESC, name ASC
	`, resortID)
	if err != nil {
		return nil, fmt.Errorf("postgres: trails for %s: %w", resortID, err)
	}
	defer rows.Close()

	var trails []*models.Trail
	for rows.Next() {
		t := &models.Trail{}
		var rating sql.NullInt64
		var groomed sql.NullBool
		var opened, closed sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.ResortID, &t.Name, &t.UniqueName, &t.TrailType, &t.Status,
			&t.IsOpen, &rating, &groomed, &t.NightSkiing, &opened, &closed, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan trail: %w", err)
		}
		t.Rating = models.RatingUnknown
		if rating.Valid {
			t.Rating = models.Rating(rating.Int64)
		}
		if groomed.Valid {
			g := groomed.Bool
			t.Groomed = &g
		}
		t.LastOpenedOn = nullableTime(opened)
		t.LastClosedOn = nullableTime(closed)
		trails = append(trails, t)
	}
	return trails, rows.Err()
}

// SetSnowReport stores the snow metrics blob for a resort.
func (pg *Postgres) SetSnowReport(resortID string, report *models.SnowReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("postgres: encode snow report: %w", err)
	}
	_, err = pg.db.Exec(`UPDATE resorts SET snow_report = $2 WHERE id = $1`, resortID, blob)
	if err != nil {
		return fmt.Errorf("postgres: set snow report for %s: %w", resortID, err)
	}
	return nil
}

// SeedResorts upserts administratively-defined resorts. Aggregate
// counters and timestamps of existing rows are left alone.
func (pg *Postgres) SeedResorts(resorts []*models.Resort) error {
	for _, r := range resorts {
		_, err := pg.db.Exec(`
			INSERT INTO resorts (id, name, city, state, parser_name,
				trail_report_url, snow_report_url, additional_wait_seconds)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				state = EXCLUDED.state,
				parser_name = EXCLUDED.parser_name,
				trail_report_url = EXCLUDED.trail_report_url,
				snow_report_url = EXCLUDED.snow_report_url,
				additional_wait_seconds = EXCLUDED.additional_wait_seconds
		`, r.ID, r.Name, r.City, r.State, r.ParserName,
			r.TrailReportURL, r.SnowReportURL, r.AdditionalWaitSeconds)
		if err != nil {
			return fmt.Errorf("postgres: seed resort %s: %w", r.ID, err)
		}
	}
	return nil
}

// Begin opens the transaction one resort's reconciliation commits
// through.
func (pg *Postgres) Begin(resortID string) (ScrapeTx, error) {
	tx, err := pg.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("postgres: begin for %s: %w", resortID, err)
	}
	return &scrapeTx{tx: tx}, nil
}

type scrapeTx struct {
	tx *sql.Tx
}

func (s *scrapeTx) InsertLift(l *models.Lift) error {
	_, err := s.tx.Exec(`
		INSERT INTO lifts (id, resort_id, name, unique_name, status, is_open,
			last_opened_on, last_closed_on, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.ResortID, l.Name, l.UniqueName, l.Status, l.IsOpen,
		l.LastOpenedOn, l.LastClosedOn, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert lift %s: %w", l.UniqueName, err)
	}
	return nil
}

func (s *scrapeTx) UpdateLift(l *models.Lift) error {
	_, err := s.tx.Exec(`
		UPDATE lifts
		SET status = $2, is_open = $3, last_opened_on = $4, last_closed_on = $5,
		    updated_at = $6
		WHERE id = $1
	`, l.ID, l.Status, l.IsOpen, l.LastOpenedOn, l.LastClosedOn, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update lift %s: %w", l.UniqueName, err)
	}
	return nil
}

func (s *scrapeTx) InsertTrail(t *models.Trail) error {
	_, err := s.tx.Exec(`
		INSERT INTO trails (id, resort_id, name, unique_name, trail_type, status,
			is_open, rating, groomed, night_skiing, last_opened_on, last_closed_on,
			updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, t.ID, t.ResortID, t.Name, t.UniqueName, t.TrailType, t.Status,
		t.IsOpen, ratingValue(t.Rating), t.Groomed, t.NightSkiing,
		t.LastOpenedOn, t.LastClosedOn, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert trail %s: %w", t.UniqueName, err)
	}
	return nil
}

func (s *scrapeTx) UpdateTrail(t *models.Trail) error {
	_, err := s.tx.Exec(`
		UPDATE trails
		SET trail_type = $2, status = $3, is_open = $4, rating = $5, groomed = $6,
		    night_skiing = $7, last_opened_on = $8, last_closed_on = $9, updated_at = $10
		WHERE id = $1
	`, t.ID, t.TrailType, t.Status, t.IsOpen, ratingValue(t.Rating), t.Groomed,
		t.NightSkiing, t.LastOpenedOn, t.LastClosedOn, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update trail %s: %w", t.UniqueName, err)
	}
	return nil
}

func (s *scrapeTx) UpdateResort(r *models.Resort) error {
	_, err := s.tx.Exec(`
		UPDATE resorts
		SET total_lifts = $2, open_lifts = $3, total_trails = $4, open_trails = $5,
		    updated_at = $6
		WHERE id = $1
	`, r.ID, r.TotalLifts, r.OpenLifts, r.TotalTrails, r.OpenTrails, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update resort %s: %w", r.ID, err)
	}
	return nil
}

func (s *scrapeTx) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (s *scrapeTx) Rollback() error {
	return s.tx.Rollback()
}

// CreateUser inserts a new API user.
func (pg *Postgres) CreateUser(user *models.User) error {
	_, err := pg.db.Exec(`
		INSERT INTO users (id, email, email_verified, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.EmailVerified, user.HashedPassword, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

// UserByEmail returns one user or ErrNotFound.
func (pg *Postgres) UserByEmail(email string) (*models.User, error) {
	u := &models.User{}
	err := pg.db.QueryRow(`
		SELECT id, email, email_verified, hashed_password, created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.EmailVerified, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: user by email: %w", err)
	}
	return u, nil
}

// ratingValue maps RatingUnknown to NULL so unmapped trails sort after
// every rated one under ORDER BY rating ASC.
func ratingValue(r models.Rating) interface{} {
	if r == models.RatingUnknown {
		return nil
	}
	return int64(r)
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
