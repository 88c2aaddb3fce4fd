package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inboxpilot/docsort/interfaces"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports the ledger size and the outcome of the most recent sweep.
func Status(pipelineService interfaces.PipelineService, hashLedger interfaces.HashLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":      "ok",
			"ledger_size": hashLedger.Len(),
		}

		if summary := pipelineService.LastSummary(); summary != nil {
			response["last_sweep"] = summary
		}

		c.JSON(http.StatusOK, response)
	}
}
