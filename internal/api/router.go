package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"NewsAnalyzer/internal/domain"
)

// Analyzer runs the full article analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalysisEnvelope, error)
}

// WaterDetector scores body text for filler.
type WaterDetector interface {
	Analyze(ctx context.Context, req domain.WaterRequest) (domain.WaterReport, error)
	AnalyzeBatch(ctx context.Context, reqs []domain.WaterRequest) ([]domain.WaterReport, error)
	Status() string
}

// ClickbaitDetector scores headlines.
type ClickbaitDetector interface {
	Analyze(ctx context.Context, req domain.ClickbaitRequest) (domain.ClickbaitReport, error)
	Status() string
}

// StatusReporter exposes model readiness for /health.
type StatusReporter interface {
	Status() string
}

// Services are the use cases exposed over HTTP.
type Services struct {
	Analyzer  Analyzer
	Water     WaterDetector
	Clickbait ClickbaitDetector
	Sentiment StatusReporter
	Version   string
}

// Handler serves the JSON API.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(svc Services, logger *slog.Logger) *gin.Engine {
	h := &Handler{svc: svc, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger))

	router.GET("/health", h.health)
	router.POST("/analysis", h.analyze)
	router.POST("/analyze", h.analyze)
	router.POST("/water-detection", h.water)
	router.POST("/water-detection/batch", h.waterBatch)
	router.POST("/clickbait/analyze", h.clickbait)

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return router
}

func (h *Handler) health(c *gin.Context) {
	models := gin.H{}
	if h.svc.Sentiment != nil {
		models["sentiment"] = h.svc.Sentiment.Status()
	}
	if h.svc.Clickbait != nil {
		models["clickbait"] = h.svc.Clickbait.Status()
	}
	if h.svc.Water != nil {
		models["water"] = h.svc.Water.Status()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.svc.Version,
		"models":  models,
	})
}
