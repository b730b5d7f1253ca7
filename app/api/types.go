package api

import (
	"net/http"
	"time"

	"github.com/lysyi3m/rss-hook/app/tasks"
)

type StatsProvider interface {
	Stats() tasks.Stats
}

var _ StatsProvider = (*tasks.Poller)(nil)

type Handler struct {
	poller         StatsProvider
	metricsHandler http.Handler
	version        string
	startedAt      time.Time
}
