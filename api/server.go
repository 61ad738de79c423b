package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"weatherwatch/config"
	"weatherwatch/datasource"
	"weatherwatch/logger"
	"weatherwatch/models"
	"weatherwatch/session"
	"weatherwatch/view"
)

// Server is the local JSON view API over a single weather session
type Server struct {
	cfg     *config.Config
	service *session.Service
	units   view.Units
	engine  *gin.Engine
}

// selectRequest is the body of POST /api/suggestions/select
type selectRequest struct {
	ID      int    `json:"id"`
	Name    string `json:"name" binding:"required"`
	Country string `json:"country"`
}

// New creates the API server with routes and middleware
func New(cfg *config.Config, service *session.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	engine.Use(corsMiddleware())

	server := &Server{
		cfg:     cfg,
		service: service,
		units:   view.UnitsFor(cfg.OpenWeatherMap.Units),
		engine:  engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Infof("Shutting down view API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealthCheck)
		api.GET("/state", s.handleState)
		api.GET("/weather", s.handleWeatherByCity)
		api.GET("/weather/coordinates", s.handleWeatherByCoordinates)
		api.POST("/location", s.handleCurrentLocation)
		api.GET("/suggestions", s.handleSuggestions)
		api.POST("/suggestions/select", s.handleSelectSuggestion)
	}
}

// requestTimeout bounds one lookup: geolocation, current conditions and forecast
func (s *Server) requestTimeout() time.Duration {
	return 3 * s.cfg.HTTPTimeout
}

// StatusFor maps a failure kind to the HTTP status the view API answers with
func StatusFor(kind datasource.Kind) int {
	switch kind {
	case datasource.KindConfiguration:
		return http.StatusInternalServerError
	case datasource.KindUnauthorized, datasource.KindService:
		return http.StatusBadGateway
	case datasource.KindNotFound:
		return http.StatusNotFound
	case datasource.KindNoResponse:
		return http.StatusServiceUnavailable
	case datasource.KindInvalidInput:
		return http.StatusBadRequest
	case datasource.KindGeolocation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errSuperseded is the message for a lookup replaced by a newer one
const errSuperseded = "Request superseded by a newer lookup."

// respond writes the page for snap, or the error envelope when snap holds a
// failure or belongs to a newer request
func (s *Server) respond(c *gin.Context, snap session.Snapshot) {
	page := view.NewPage(snap, s.units)
	if snap.Superseded {
		c.JSON(http.StatusConflict, gin.H{"error": errSuperseded, "state": page})
		return
	}
	if snap.Failure != nil {
		c.JSON(StatusFor(snap.Failure.Kind), gin.H{"error": snap.Failure.Message, "state": page})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/health
func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GET /api/state
func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, view.NewPage(s.service.State(), s.units))
}

// GET /api/weather?city=
func (s *Server) handleWeatherByCity(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout())
	defer cancel()

	s.respond(c, s.service.SearchCity(ctx, c.Query("city")))
}

// GET /api/weather/coordinates?lat=&lon=
func (s *Server) handleWeatherByCoordinates(c *gin.Context) {
	lat, err := parseCoordinate(c.Query("lat"), 90)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := parseCoordinate(c.Query("lon"), 180)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout())
	defer cancel()

	s.respond(c, s.service.SearchCoordinates(ctx, lat, lon))
}

// POST /api/location
func (s *Server) handleCurrentLocation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout())
	defer cancel()

	s.respond(c, s.service.UseCurrentLocation(ctx))
}

// GET /api/suggestions?q=
// A failed lookup is just an empty list with 200. A missing suggestion
// credential answers 500 with the configuration message.
func (s *Server) handleSuggestions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.HTTPTimeout)
	defer cancel()

	suggestions := s.service.Suggest(ctx, c.Query("q"))

	if err := s.cfg.Validate(); errors.Is(err, config.ErrMissingSuggestionKey) {
		s.service.ReportConfiguration(config.ErrMissingSuggestionKey)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       datasource.MessageMissingSuggestionKey,
			"suggestions": suggestions,
			"count":       len(suggestions),
			"state":       view.NewPage(s.service.State(), s.units),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// POST /api/suggestions/select
func (s *Server) handleSelectSuggestion(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion"})
		return
	}

	snap := s.service.Select(models.Suggestion{
		ID:      req.ID,
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
	})
	c.JSON(http.StatusOK, view.NewPage(snap, s.units))
}

func parseCoordinate(raw string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if v < -limit || v > limit {
		return 0, errors.New("coordinate out of range")
	}
	return v, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
