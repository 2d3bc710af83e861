package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"opentrail/models"
	"opentrail/storage"
)

// Response shapes. These are the only shapes API consumers see; the
// scrape-side internals (parser names, wait settings) stay hidden.

type resortResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	TrailReportURL string             `json:"trail_report_url"`
	SnowReportURL  string             `json:"snow_report_url,omitempty"`
	TotalLifts     int                `json:"total_lifts"`
	OpenLifts      int                `json:"open_lifts"`
	TotalTrails    int                `json:"total_trails"`
	OpenTrails     int                `json:"open_trails"`
	SnowReport     *models.SnowReport `json:"snow_report"`
	UpdatedAt      *time.Time         `json:"updated_at"`
}

type liftResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	IsOpen       bool       `json:"is_open"`
	LastOpenedOn *string    `json:"last_opened_on"`
	LastClosedOn *string    `json:"last_closed_on"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type trailResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TrailType    string    `json:"trail_type"`
	Rating       string    `json:"rating"`
	Status       string    `json:"status"`
	IsOpen       bool      `json:"is_open"`
	Groomed      *bool     `json:"groomed"`
	NightSkiing  bool      `json:"night_skiing"`
	LastOpenedOn *string   `json:"last_opened_on"`
	LastClosedOn *string   `json:"last_closed_on"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) listResorts(c echo.Context) error {
	resorts, err := s.resorts.Resorts()
	if err != nil {
		s.logger.Error("[api] list resorts: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	out := make([]resortResponse, 0, len(resorts))
	for _, r := range resorts {
		out = append(out, toResortResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getResort(c echo.Context) error {
	resort, err := s.resorts.ResortByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resort not found"})
	}
	if err != nil {
		s.logger.Error("[api] get resort: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toResortResponse(resort))
}

func (s *Server) listLifts(c echo.Context) error {
	lifts, err := s.resorts.Lifts(c.Param("id"))
	if err != nil {
		s.logger.Error("[api] list lifts: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	out := make([]liftResponse, 0, len(lifts))
	for _, l := range lifts {
		out = append(out, liftResponse{
			ID:           l.ID,
			Name:         l.Name,
			Status:       l.Status,
			IsOpen:       l.IsOpen,
			LastOpenedOn: formatDate(l.LastOpenedOn),
			LastClosedOn: formatDate(l.LastClosedOn),
			UpdatedAt:    l.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listTrails(c echo.Context) error {
	trails, err := s.resorts.Trails(c.Param("id"))
	if err != nil {
		s.logger.Error("[api] list trails: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	out := make([]trailResponse, 0, len(trails))
	for _, t := range trails {
		out = append(out, trailResponse{
			ID:           t.ID,
			Name:         t.Name,
			TrailType:    t.TrailType,
			Rating:       t.Rating.Slug(),
			Status:       t.Status,
			IsOpen:       t.IsOpen,
			Groomed:      t.Groomed,
			NightSkiing:  t.NightSkiing,
			LastOpenedOn: formatDate(t.LastOpenedOn),
			LastClosedOn: formatDate(t.LastClosedOn),
			UpdatedAt:    t.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type newUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) createUser(c echo.Context) error {
	var req newUserRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("[api] hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		HashedPassword: hash,
		CreatedAt:      time.Now(),
	}
	if err := s.users.CreateUser(user); err != nil {
		s.logger.Error("[api] create user: %v", err)
		return c.JSON(http.StatusConflict, echo.Map{"error": "could not create user"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": user.ID, "email": user.Email})
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	user, err := s.users.UserByEmail(req.Email)
	if err != nil || !verifyPassword(user.HashedPassword, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ttl := time.Duration(s.cfg.JWTExpiryHours) * time.Hour
	token, err := newAccessToken(s.cfg.JWTSecret, user.ID, user.Email, ttl)
	if err != nil {
		s.logger.Error("[api] sign token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": token, "token_type": "bearer"})
}

// refreshResort triggers an on-demand scrape of one resort. The scrape
// runs inline; an overlapping scrape is skipped by the lock set.
func (s *Server) refreshResort(c echo.Context) error {
	id := c.Param("id")
	if err := s.scraper.ScrapeByID(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resort not found"})
		}
		s.logger.Error("[api] refresh %s: %v", id, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "scrape failed"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "refreshed"})
}

func toResortResponse(r *models.Resort) resortResponse {
	return resortResponse{
		ID:             r.ID,
		Name:           r.Name,
		City:           r.City,
		State:          r.State,
		TrailReportURL: r.TrailReportURL,
		SnowReportURL:  r.SnowReportURL,
		TotalLifts:     r.TotalLifts,
		OpenLifts:      r.OpenLifts,
		TotalTrails:    r.TotalTrails,
		OpenTrails:     r.OpenTrails,
		SnowReport:     r.SnowReport,
		UpdatedAt:      r.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
