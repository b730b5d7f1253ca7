package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lysyi3m/rss-hook/app/api"
	"github.com/lysyi3m/rss-hook/app/cfg"
	"github.com/lysyi3m/rss-hook/app/config"
	"github.com/lysyi3m/rss-hook/app/database"
	"github.com/lysyi3m/rss-hook/app/dedup"
	"github.com/lysyi3m/rss-hook/app/feed"
	"github.com/lysyi3m/rss-hook/app/metrics"
	"github.com/lysyi3m/rss-hook/app/notify"
	"github.com/lysyi3m/rss-hook/app/tasks"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], clockwork.NewRealClock())
	stop()
	os.Exit(code)
}

// run wires the application and returns the process exit code.
func run(ctx context.Context, args []string, clock clockwork.Clock) int {
	setupLogging(false)

	appCfg, err := cfg.Load(args)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if appCfg == nil {
		return 0
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting RSS Hook", "version", appCfg.Version, "config", appCfg.ConfigFile, "state_backend", appCfg.StateBackend)

	settings, err := config.NewLoader(appCfg.ConfigFile).Load()
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		return 1
	}

	interval := settings.GetInterval()
	if appCfg.RunOnce {
		interval = 0
	}

	store, closeStore, err := openStore(settings.GetMaxSeenPerFeed())
	if err != nil {
		slog.Error("Failed to open dedup store", "error", err)
		return 1
	}
	defer closeStore()

	record, err := store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load dedup record, starting empty", "error", err)
	}
	if record == nil {
		record = dedup.NewRecord(settings.GetMaxSeenPerFeed())
	}
	slog.Info("Dedup record loaded",
		"feeds", record.FeedCount(),
		"entries", record.Total(),
		"max_seen_per_feed", record.MaxSeenPerFeed())

	httpClient := &http.Client{}
	timeout := settings.GetTimeout()

	processor := newProcessor(settings, httpClient, appCfg)

	notifier, closeNotifier := newNotifier(settings, httpClient, appCfg.UserAgent)
	defer closeNotifier()

	m := metrics.New()
	m.SeenEntries.Set(float64(record.Total()))

	poller := tasks.NewPoller(settings.Feeds, processor, tasks.NewScheduler(appCfg.Workers, 2*timeout),
		notifier, store, record, m, clock, interval)

	var httpServer *http.Server
	if appCfg.StatusPort != "" && interval != 0 {
		httpServer = startStatusServer(appCfg.StatusPort, api.NewHandler(poller, m.Handler(), appCfg.Version))
	}

	if err := poller.Run(ctx); err != nil {
		slog.Error("Poller failed", "error", err)
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Status server shutdown error", "error", err)
		} else {
			slog.Info("Status server stopped")
		}
	}

	slog.Info("RSS Hook shutdown complete")
	return 0
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openStore(maxSeenPerFeed int) (dedup.Store, func(), error) {
	appCfg := cfg.Get()

	switch appCfg.StateBackend {
	case cfg.StateBackendSQLite:
		db, err := database.NewConnection(appCfg.StateFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}
		return database.NewSeenRepository(db, maxSeenPerFeed), closeDB, nil
	default:
		return dedup.NewFileStore(appCfg.StateFile, maxSeenPerFeed), func() {}, nil
	}
}

func newProcessor(settings *config.Settings, httpClient *http.Client, appCfg *cfg.Cfg) *feed.Processor {
	timeout := settings.GetTimeout()

	fetcher := feed.NewHTTPFetcher(httpClient, feed.NewParser(), appCfg.UserAgent, timeout)
	normalizer := feed.NewNormalizer(feed.NewRenderer(), appCfg.Location)

	var extractor feed.Extractor
	if settings.ExtractContent {
		extractor = feed.NewContentExtractor(httpClient, appCfg.UserAgent, timeout)
	}

	return feed.NewProcessor(fetcher, normalizer, extractor, settings.GetMaxAge())
}

func newNotifier(settings *config.Settings, httpClient *http.Client, userAgent string) (notify.Notifier, func()) {
	timeout := settings.GetTimeout()

	if settings.Sink() == config.SinkKafka {
		k := notify.NewKafka(settings.Kafka.Brokers, settings.Kafka.Topic, timeout)
		slog.Info("Delivering to Kafka", "brokers", settings.Kafka.Brokers, "topic", settings.Kafka.Topic)
		return k, func() {
			if err := k.Close(); err != nil {
				slog.Error("Failed to close Kafka writer", "error", err)
			}
		}
	}

	slog.Info("Delivering to webhook", "rate", settings.DeliveryRate, "burst", settings.DeliveryBurst)
	return notify.NewWebhook(settings.WebhookURL, httpClient, settings.DeliveryRate, settings.DeliveryBurst, userAgent, timeout), func() {}
}

func startStatusServer(port string, handler *api.Handler) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting status server", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Status server error", "error", err)
		}
	}()

	return httpServer
}
