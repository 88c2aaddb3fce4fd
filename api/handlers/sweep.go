package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/tracing"
	"github.com/inboxpilot/docsort/services/pipeline"
)

// TriggerSweep runs a mailbox sweep on demand. The sweep executes inline so
// the response carries the run summary; a concurrent sweep yields 409.
func TriggerSweep(pipelineService interfaces.PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriggerSweep", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		summary, err := pipelineService.Sweep(ctx)
		if err != nil {
			if err == pipeline.ErrSweepInProgress {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
