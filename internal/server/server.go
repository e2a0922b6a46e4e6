// Package server exposes the validation pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"saas-validator/internal/agent"
	"saas-validator/internal/common/config"
	commonerrors "saas-validator/internal/common/errors"
	"saas-validator/internal/common/logger"
)

// maxBatchSize bounds one batch request; each query is a full pipeline run.
const maxBatchSize = 10

// Validator is the slice of the agent the HTTP layer needs.
type Validator interface {
	RunWithOptions(ctx context.Context, query string, opts agent.RunOptions) *agent.RunResult
	TrendsHealthy(ctx context.Context) bool
}

type Server struct {
	validator Validator
	cfg       *config.Config
	logger    logger.Logger
}

func New(validator Validator, cfg *config.Config, log logger.Logger) *Server {
	return &Server{
		validator: validator,
		cfg:       cfg,
		logger:    log.With(map[string]interface{}{"component": "server"}),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.POST("/validate", s.handleValidate)
	router.POST("/validate/batch", s.handleValidateBatch)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "SaaS Validator Agent API",
		"version": s.cfg.App.Version,
		"status":  "running",
		"endpoints": gin.H{
			"health":         "/health",
			"validate":       "/validate",
			"validate_batch": "/validate/batch",
			"metrics":        "/metrics",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:                "healthy",
		AgentReady:            true,
		GoogleTrendsAvailable: s.validator.TrendsHealthy(c.Request.Context()),
		Timestamp:             time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commonerrors.NewInvalidQueryError(err.Error()))
		return
	}

	result := s.validator.RunWithOptions(c.Request.Context(), req.Query, req.options())
	c.JSON(http.StatusOK, result)
}

// handleValidateBatch runs every query concurrently and reports aggregate
// counters alongside the per-query results, in request order.
func (s *Server) handleValidateBatch(c *gin.Context) {
	var req BatchValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commonerrors.NewInvalidQueryError(err.Error()))
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, commonerrors.NewInvalidQueryError("queries must not be empty"))
		return
	}
	if len(req.Queries) > maxBatchSize {
		c.JSON(http.StatusBadRequest, commonerrors.NewInvalidQueryError("batch size exceeds limit"))
		return
	}

	opts := agent.DefaultRunOptions()
	if req.IncludeTrends != nil {
		opts.IncludeTrends = *req.IncludeTrends
	}

	results := make([]*agent.RunResult, len(req.Queries))
	var wg sync.WaitGroup
	for i, query := range req.Queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			results[i] = s.validator.RunWithOptions(c.Request.Context(), query, opts)
		}(i, query)
	}
	wg.Wait()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}

	c.JSON(http.StatusOK, BatchValidationResponse{
		Success:           true,
		Results:           results,
		TotalQueries:      len(results),
		SuccessfulQueries: successful,
		FailedQueries:     len(results) - successful,
	})
}
