package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lysyi3m/rss-hook/app/dedup"
	"github.com/lysyi3m/rss-hook/app/feed"
	"github.com/lysyi3m/rss-hook/app/metrics"
	"github.com/lysyi3m/rss-hook/app/notify"
)

// PassResult summarizes one poll pass.
type PassResult struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Feeds          int           `json:"feeds"`
	FetchErrors    int           `json:"fetch_errors"`
	Emitted        int           `json:"emitted"`
	Delivered      int           `json:"delivered"`
	DeliveryErrors int           `json:"delivery_errors"`
	Persisted      bool          `json:"persisted"`
	Interrupted    bool          `json:"interrupted"`
}

// FeedStatus is the outcome of the latest pass for one feed.
type FeedStatus struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	LastNew       int        `json:"last_new"`
	Seen          int        `json:"seen"`
}

type Stats struct {
	Passes   int          `json:"passes"`
	LastPass *PassResult  `json:"last_pass,omitempty"`
	Feeds    []FeedStatus `json:"feeds"`
	Seen     int          `json:"seen_entries"`
	MaxSeen  int          `json:"max_seen_per_feed"`
}

// Poller drives fetch, select, deliver and persist passes over the configured feeds.
type Poller struct {
	sources   []*feed.Source
	processor *feed.Processor
	scheduler TaskSchedulerInterface
	notifier  notify.Notifier
	store     dedup.Store
	record    *dedup.Record
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	interval  time.Duration

	mu       sync.RWMutex
	passes   int
	lastPass *PassResult
	statuses map[string]FeedStatus
}

func NewPoller(feedURLs []string, processor *feed.Processor, scheduler TaskSchedulerInterface,
	notifier notify.Notifier, store dedup.Store, record *dedup.Record,
	m *metrics.Metrics, clock clockwork.Clock, interval time.Duration) *Poller {
	sources := make([]*feed.Source, 0, len(feedURLs))
	for _, url := range feedURLs {
		sources = append(sources, feed.NewSource(url))
	}

	return &Poller{
		sources:   sources,
		processor: processor,
		scheduler: scheduler,
		notifier:  notifier,
		store:     store,
		record:    record,
		metrics:   m,
		clock:     clock,
		interval:  interval,
		statuses:  make(map[string]FeedStatus, len(sources)),
	}
}

// Run polls until ctx is cancelled. With a zero interval it returns after one pass.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Poller started", "feeds", len(p.sources), "interval", p.interval)

	for {
		p.RunPass(ctx)

		if p.interval == 0 {
			slog.Info("Single pass completed, exiting")
			return nil
		}
		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
		case <-p.clock.After(p.interval):
			continue
		}
		break
	}

	slog.Info("Poller stopped")
	return nil
}

// RunPass fetches every feed, delivers new entries in feed order and persists
// the record once. The persist step runs even when ctx was cancelled mid-pass.
func (p *Poller) RunPass(ctx context.Context) PassResult {
	result := PassResult{
		ID:        uuid.NewString(),
		StartedAt: p.clock.Now(),
		Feeds:     len(p.sources),
	}

	slog.Debug("Pass started", "pass_id", result.ID, "feeds", result.Feeds)

	fetchTasks := make([]*FetchFeedTask, len(p.sources))
	queue := make([]TaskInterface, len(p.sources))
	for i, source := range p.sources {
		fetchTasks[i] = NewFetchFeedTask(source, p.processor)
		queue[i] = fetchTasks[i]
	}

	p.scheduler.Run(ctx, queue)

	for _, task := range fetchTasks {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		p.handleFeed(ctx, task, &result)
	}

	if result.Interrupted {
		slog.Warn("Shutdown requested, pass cut short", "pass_id", result.ID)
	}

	p.persist(ctx, &result)

	result.Duration = p.clock.Now().Sub(result.StartedAt)
	p.metrics.ObservePass(result.Duration, p.record.Total())

	p.mu.Lock()
	p.passes++
	p.lastPass = &result
	p.mu.Unlock()

	slog.Info("Pass completed",
		"pass_id", result.ID,
		"duration", result.Duration,
		"feeds", result.Feeds,
		"fetch_errors", result.FetchErrors,
		"emitted", result.Emitted,
		"delivered", result.Delivered,
		"delivery_errors", result.DeliveryErrors,
		"persisted", result.Persisted)

	return result
}

func (p *Poller) handleFeed(ctx context.Context, task *FetchFeedTask, result *PassResult) {
	source := task.Source
	status := FeedStatus{URL: source.URL}

	if !task.Done() {
		return
	}

	p.metrics.ObserveFetch(task.Err)

	if task.Err != nil {
		result.FetchErrors++
		status.LastError = task.Err.Error()
		p.setStatus(source, status)
		return
	}

	now := p.clock.Now()
	status.LastFetchedAt = &now

	entries, stats := p.processor.Select(ctx, source, task.Feed, p.record, now)
	p.metrics.ObserveSelection(source.URL, stats.New, stats.Duplicates, stats.OutOfScope, stats.Invalid)

	status.LastNew = len(entries)
	result.Emitted += len(entries)
	p.setStatus(source, status)

	for i, entry := range entries {
		if ctx.Err() != nil {
			slog.Warn("Shutdown requested, undelivered entries dropped",
				"feed", source.URL,
				"dropped", len(entries)-i)
			return
		}

		err := p.notifier.Notify(ctx, notify.NewMessage(source.DisplayTitle(), entry))
		p.metrics.ObserveDelivery(err)

		if err != nil {
			slog.Error("Failed to deliver entry", "feed", source.URL, "entry", entry.ID, "title", entry.Title, "error", err)
			result.DeliveryErrors++
			continue
		}

		result.Delivered++
	}
}

func (p *Poller) persist(ctx context.Context, result *PassResult) {
	if err := p.store.Persist(context.WithoutCancel(ctx), p.record); err != nil {
		slog.Error("Failed to persist dedup record", "pass_id", result.ID, "error", err)
		p.metrics.PersistErrors.Inc()
		return
	}

	result.Persisted = true
}

func (p *Poller) setStatus(source *feed.Source, status FeedStatus) {
	status.Title = source.DisplayTitle()

	p.mu.Lock()
	defer p.mu.Unlock()

	if status.LastFetchedAt == nil {
		status.LastFetchedAt = p.statuses[source.URL].LastFetchedAt
	}
	p.statuses[source.URL] = status
}

// Stats returns a snapshot for the status API.
func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := Stats{
		Passes:  p.passes,
		Feeds:   make([]FeedStatus, 0, len(p.sources)),
		Seen:    p.record.Total(),
		MaxSeen: p.record.MaxSeenPerFeed(),
	}

	if p.lastPass != nil {
		last := *p.lastPass
		stats.LastPass = &last
	}

	for _, source := range p.sources {
		status, ok := p.statuses[source.URL]
		if !ok {
			status = FeedStatus{URL: source.URL, Title: source.URL}
		}
		status.Seen = p.record.Len(source.URL)
		stats.Feeds = append(stats.Feeds, status)
	}

	return stats
}
