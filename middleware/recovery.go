package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 carrying the trace ID. gin's
// recovery still handles broken pipes; its own stack dump is discarded in
// favour of the structured log entry.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		traceID := GetTraceID(c)
		log.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("trace_id", traceID),
			zap.Int64("account_id", GetAccountID(c)),
			zap.String("route", c.FullPath()),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":    "internal server error",
			"trace_id": traceID,
		})
	})
}
