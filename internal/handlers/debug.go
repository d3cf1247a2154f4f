package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenant-portal/internal/telemetry"
)

// RegisterDebugRoutes adds /debug/audit-test, which pushes one audit line
// and one debug.ping domain event through the emitter so operators can
// follow both onto the bus.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.Emitter, enabled bool) {
	if !enabled {
		return
	}

	debug := router.Group("/debug")
	debug.GET("/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event emitter not configured"})
			return
		}

		ctx := c.Request.Context()
		requestID := requestIDFromContext(c)
		uid := userIDFromContext(c)
		emitter.Audit(ctx, "INFO", "tenant portal debug ping", requestID, uid)
		emitter.Event(ctx, telemetry.DebugPing, requestID, uid, gin.H{
			"route":     c.FullPath(),
			"client_ip": c.ClientIP(),
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "events": []string{"audit", telemetry.DebugPing}})
	})
}
