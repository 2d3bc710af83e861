// Package api serves the normalized trail data over a thin read API,
// plus user registration and the authenticated on-demand refresh
// trigger. The scrape pipeline owns all writes to resorts, lifts and
// trails; nothing here mutates them directly.
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"opentrail/config"
	"opentrail/services"
	"opentrail/storage"
	"opentrail/utils"
)

// Server wires the echo instance to the store and the scrape service.
type Server struct {
	cfg     *config.Config
	logger  *utils.Logger
	resorts storage.ResortStore
	users   storage.UserStore
	scraper *services.ScrapeService
}

// New builds the echo application with all routes registered.
func New(cfg *config.Config, logger *utils.Logger, resorts storage.ResortStore, users storage.UserStore, scraper *services.ScrapeService) (*Server, *echo.Echo) {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		resorts: resorts,
		users:   users,
		scraper: scraper,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", s.health)
	e.GET("/resorts", s.listResorts)
	e.GET("/resorts/:id", s.getResort)
	e.GET("/resorts/:id/lifts", s.listLifts)
	e.GET("/resorts/:id/trails", s.listTrails)

	e.POST("/users", s.createUser)
	e.POST("/token", s.token)

	protected := e.Group("", jwtAuth(cfg.JWTSecret))
	protected.POST("/resorts/:id/refresh", s.refreshResort)

	return s, e
}
