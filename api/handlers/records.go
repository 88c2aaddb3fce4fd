package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/tracing"
)

// ListRecords returns the most recently filed documents
func ListRecords(recordRepository interfaces.FileRecordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListRecords", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = parsed
		}

		records, err := recordRepository.List(ctx, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
	}
}

// RecordStats returns filed document counts grouped by document type
func RecordStats(recordRepository interfaces.FileRecordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RecordStats", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		counts, err := recordRepository.CountByType(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"counts": counts})
	}
}
