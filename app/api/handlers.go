package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewHandler(poller StatsProvider, metricsHandler http.Handler, version string) *Handler {
	return &Handler{
		poller:         poller,
		metricsHandler: metricsHandler,
		version:        version,
		startedAt:      time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	stats := h.poller.Stats()

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"feeds":     len(stats.Feeds),
		"passes":    stats.Passes,
	}

	if stats.LastPass != nil {
		health["last_pass_at"] = stats.LastPass.StartedAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.poller.Stats())
}

func (h *Handler) GetMetrics(c *gin.Context) {
	h.metricsHandler.ServeHTTP(c.Writer, c.Request)
}
