// Package server exposes the journal processing pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/resources"
	"github.com/luminahealth/lumina-go/internal/store"
)

// Processor runs one journal entry through the full pipeline.
type Processor interface {
	Process(ctx context.Context, rawEntry, userID string, tags []string) (*models.JournalAnalysis, error)
}

// HistoryStore serves the read-side queries.
type HistoryStore interface {
	Entry(ctx context.Context, userID, entryID string) (*models.JournalAnalysis, error)
	History(ctx context.Context, userID string, page, pageSize int) (*models.JournalHistory, error)
	CrisisHistory(ctx context.Context, userID string, since time.Time) ([]models.CrisisEntry, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	CrisisDetection bool
}

// Server provides the journal HTTP endpoints.
type Server struct {
	echo      *echo.Echo
	processor Processor
	store     HistoryStore
	collector *metrics.Collector
	logger    *slog.Logger
	config    Config
}

// New creates the HTTP server and registers all routes.
func New(processor Processor, store HistoryStore, collector *metrics.Collector, logger *slog.Logger, cfg Config) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		processor: processor,
		store:     store,
		collector: collector,
		logger:    logger,
		config:    cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/status", s.handleStatus)

	v1 := s.echo.Group("/api/v1/journal")
	v1.POST("/entry", s.handleCreateEntry)
	v1.GET("/entries", s.handleHistory)
	v1.GET("/entries/:entry_id", s.handleGetEntry)
	v1.GET("/crisis/entries", s.handleCrisisHistory)
	v1.GET("/crisis/resources", s.handleCrisisResources)
}

// EntryRequest is the request body for POST /api/v1/journal/entry.
type EntryRequest struct {
	UserID    string   `json:"user_id"`
	EntryText string   `json:"entry_text"`
	Tags      []string `json:"tags,omitempty"`
}

// ErrorResponse is the body for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Components: map[string]bool{
			"pipeline":         s.processor != nil,
			"store":            s.store != nil,
			"crisis_detection": s.config.CrisisDetection,
		},
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	if s.collector == nil {
		return c.JSON(http.StatusOK, metrics.Snapshot{})
	}
	return c.JSON(http.StatusOK, s.collector.Snapshot())
}

func (s *Server) handleCreateEntry(c echo.Context) error {
	var req EntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	analysis, err := s.processor.Process(c.Request().Context(), req.EntryText, req.UserID, req.Tags)
	if err != nil {
		if isValidationError(err) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("journal processing failed", "user_id", req.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "journal processing failed"})
	}

	if analysis.Crisis.ImmediateActionNeeded {
		s.logger.Warn("high-risk entry processed",
			"entry_id", analysis.EntryID, "user_id", req.UserID,
			"crisis_level", int(analysis.Crisis.Level))
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleHistory(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id query parameter is required"})
	}
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size", 10)
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	history, err := s.store.History(c.Request().Context(), userID, page, pageSize)
	if err != nil {
		s.logger.Error("history retrieval failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve journal history"})
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) handleGetEntry(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id query parameter is required"})
	}
	entryID := c.Param("entry_id")

	entry, err := s.store.Entry(c.Request().Context(), userID, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "entry not found"})
		}
		s.logger.Error("entry retrieval failed",
			"user_id", userID, "entry_id", entryID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve entry"})
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleCrisisHistory(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id query parameter is required"})
	}
	days := queryInt(c, "days", 30)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	entries, err := s.store.CrisisHistory(c.Request().Context(), userID, since)
	if err != nil {
		s.logger.Error("crisis history retrieval failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve crisis history"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entries":     entries,
		"total_count": len(entries),
		"period_days": days,
	})
}

// handleCrisisResources serves the static catalog. Intentionally no auth and
// no dependencies: this endpoint must work when everything else is down.
func (s *Server) handleCrisisResources(c echo.Context) error {
	return c.JSON(http.StatusOK, resources.Load())
}

// Start begins serving. Blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrEntryTooShort) ||
		errors.Is(err, models.ErrEntryTooLong) ||
		errors.Is(err, models.ErrEmptyUserID)
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	var v int
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
		return def
	}
	return v
}
