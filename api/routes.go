package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/inboxpilot/docsort/api/handlers"
	"github.com/inboxpilot/docsort/api/middleware"
	"github.com/inboxpilot/docsort/internal/repository"
	"github.com/inboxpilot/docsort/internal/tracing"
	"github.com/inboxpilot/docsort/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check and status endpoints (no auth needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.PipelineService, s.HashLedger))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-DOCSORT-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	{
		records := api.Group("/records")
		{
			records.GET("", handlers.ListRecords(repos.FileRecordRepository))
			records.GET("/stats", handlers.RecordStats(repos.FileRecordRepository))
		}

		api.POST("/sweep", handlers.TriggerSweep(s.PipelineService))
	}
}
