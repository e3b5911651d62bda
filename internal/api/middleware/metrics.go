package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/monitoring"
)

// CollectMetrics records request latency per route template.
func CollectMetrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		monitoring.ObserveHTTPRequest(ctx.Request.Method, route, ctx.Writer.Status(), time.Since(start))
	}
}
