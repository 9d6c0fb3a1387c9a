package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 30 * time.Second

// Events handles GET /api/events. It streams a "ready" event on connect and
// a "changed" event each time the collection changes. Bursts of changes
// collapse into one event.
func (h *Handler) Events(c *gin.Context) {
	changes := make(chan struct{}, 1)
	cancel := h.deps.Feed.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.SSEvent("ready", h.syncState())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-changes:
			c.SSEvent("changed", h.syncState())
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", h.syncState())
			return true
		}
	})
}

func (h *Handler) syncState() gin.H {
	return gin.H{
		"backend":     h.deps.Feed.Backend(),
		"remoteReady": h.deps.Feed.RemoteReady(),
	}
}
