// Package server exposes the review pipeline over HTTP for front-end review
// screens: the derived report, bulk decisions and the export gate.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/WSG23/overlayreview/internal/logger"
)

type RouterConfig struct {
	HealthHandler *HealthHandler
	ReviewHandler *ReviewHandler

	Log          *logger.Logger
	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ReviewHandler != nil {
			api.GET("/projects/:projectID/review", cfg.ReviewHandler.Review)
			api.GET("/projects/:projectID/export-gate", cfg.ReviewHandler.ExportGate)
			api.POST("/projects/:projectID/decisions", cfg.ReviewHandler.Decide)
		}
	}

	return r
}
