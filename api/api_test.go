package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"opentrail/config"
	"opentrail/models"
	"opentrail/scraper"
	"opentrail/services"
	"opentrail/storage"
	"opentrail/utils"
)

type stubResortStore struct {
	resorts []*models.Resort
	lifts   map[string][]*models.Lift
	trails  map[string][]*models.Trail
}

func (s *stubResortStore) Resorts() ([]*models.Resort, error) { return s.resorts, nil }

func (s *stubResortStore) ResortByID(id string) (*models.Resort, error) {
	for _, r := range s.resorts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubResortStore) StaleResorts(time.Time) ([]*models.Resort, error) { return s.resorts, nil }
func (s *stubResortStore) Lifts(id string) ([]*models.Lift, error)          { return s.lifts[id], nil }
func (s *stubResortStore) Trails(id string) ([]*models.Trail, error)        { return s.trails[id], nil }

func (s *stubResortStore) Begin(string) (storage.ScrapeTx, error) {
	return nil, errors.New("not supported")
}

func (s *stubResortStore) SetSnowReport(string, *models.SnowReport) error { return nil }

type stubUserStore struct {
	users map[string]*models.User
}

func (s *stubUserStore) CreateUser(u *models.User) error {
	if _, exists := s.users[u.Email]; exists {
		return errors.New("duplicate email")
	}
	s.users[u.Email] = u
	return nil
}

func (s *stubUserStore) UserByEmail(email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

type stubFactory struct{}

func (stubFactory) NewPage() (scraper.PageFetcher, error) {
	return nil, errors.New("no pages in tests")
}

func newTestServer(resorts ...*models.Resort) (*echo.Echo, *config.Config) {
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
		MaxConcurrency: 1,
		MaxRetries:     1,
	}
	logger := utils.NewLogger()
	store := &stubResortStore{
		resorts: resorts,
		lifts:   map[string][]*models.Lift{},
		trails:  map[string][]*models.Trail{},
	}
	users := &stubUserStore{users: map[string]*models.User{}}
	scrapeSvc := services.NewScrapeService(cfg, logger, store, stubFactory{}, stubFactory{})
	_, e := New(cfg, logger, store, users, scrapeSvc)
	return e, cfg
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer()
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListAndGetResorts(t *testing.T) {
	updated := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	e, _ := newTestServer(&models.Resort{
		ID: "bolton-valley", Name: "Bolton Valley", City: "Bolton", State: "VT",
		TotalLifts: 6, OpenLifts: 4, UpdatedAt: &updated,
	})

	rec := doJSON(e, http.MethodGet, "/resorts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []resortResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Bolton Valley", list[0].Name)
	require.Equal(t, 4, list[0].OpenLifts)

	rec = doJSON(e, http.MethodGet, "/resorts/bolton-valley", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/resorts/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRegistrationAndTokenGrant(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/users", `{"email":"skier@example.com","password":"hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate email is rejected.
	rec = doJSON(e, http.MethodPost, "/users", `{"email":"skier@example.com","password":"hunter2"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/token", `{"email":"skier@example.com","password":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
	require.Equal(t, "bearer", grant.TokenType)
	require.NotEmpty(t, grant.AccessToken)

	rec = doJSON(e, http.MethodPost, "/token", `{"email":"skier@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRequiresValidToken(t *testing.T) {
	e, cfg := newTestServer()

	rec := doJSON(e, http.MethodPost, "/resorts/bolton-valley/refresh", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/resorts/bolton-valley/refresh", "", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := newAccessToken("some-other-secret", "u1", "x@example.com", time.Hour)
	require.NoError(t, err)
	rec = doJSON(e, http.MethodPost, "/resorts/bolton-valley/refresh", "", forged)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A valid token reaches the handler; the resort does not exist.
	token, err := newAccessToken(cfg.JWTSecret, "u1", "x@example.com", time.Hour)
	require.NoError(t, err)
	rec = doJSON(e, http.MethodPost, "/resorts/bolton-valley/refresh", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccessTokenClaims(t *testing.T) {
	signed, err := newAccessToken("s3cret", "user-1", "skier@example.com", time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "skier@example.com", claims["email"])
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.True(t, verifyPassword(hash, "correct horse"))
	require.False(t, verifyPassword(hash, "battery staple"))
}
