package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-hook/app/dedup"
)

// Processor selects the entries of a feed that are new and within the recency window.
type Processor struct {
	fetcher    Fetcher
	normalizer *Normalizer
	extractor  Extractor // nil disables content extraction
	maxAge     time.Duration
}

func NewProcessor(fetcher Fetcher, normalizer *Normalizer, extractor Extractor, maxAge time.Duration) *Processor {
	return &Processor{
		fetcher:    fetcher,
		normalizer: normalizer,
		extractor:  extractor,
		maxAge:     maxAge,
	}
}

// SelectStats counts what happened to each raw entry of one feed.
type SelectStats struct {
	Total      int
	Invalid    int
	Duplicates int
	OutOfScope int
	New        int
}

// Process fetches source and returns its new in-scope entries in feed order.
// A fetch failure yields no entries.
func (p *Processor) Process(ctx context.Context, source *Source, record *dedup.Record, now time.Time) []Entry {
	feed, err := p.Fetch(ctx, source)
	if err != nil {
		slog.Error("Failed to process feed", "feed", source.URL, "error", err)
		return nil
	}

	entries, _ := p.Select(ctx, source, feed, record, now)
	return entries
}

// Fetch downloads and parses source without touching any record.
func (p *Processor) Fetch(ctx context.Context, source *Source) (*Feed, error) {
	return p.fetcher.Fetch(ctx, source.URL)
}

// Select filters an already fetched feed against the record and the recency
// window. Emitted entries are marked seen; out-of-scope entries are not, so a
// wider window can still surface them later. The record is not persisted.
func (p *Processor) Select(ctx context.Context, source *Source, feed *Feed, record *dedup.Record, now time.Time) ([]Entry, SelectStats) {
	if feed.Title != "" {
		source.Title = feed.Title
	}

	stats := SelectStats{Total: len(feed.Entries)}
	var selected []Entry

	for i, raw := range feed.Entries {
		entry, ok := p.normalizer.Run(raw)
		if !ok {
			slog.Warn("Entry has neither ID nor link, skipping", "feed", source.URL, "index", i, "title", raw.Title)
			stats.Invalid++
			continue
		}

		if record.Seen(source.URL, entry.ID) {
			stats.Duplicates++
			continue
		}

		if !IsInScope(entry.PublishedAt, now, p.maxAge) {
			slog.Debug("Entry outside recency window", "feed", source.URL, "entry", entry.ID, "published_at", entry.PublishedAt)
			stats.OutOfScope++
			continue
		}

		record.MarkSeen(source.URL, entry.ID)

		if entry.BodyMissing && p.extractor != nil {
			p.extractBody(ctx, source, &entry)
		}

		selected = append(selected, entry)
		stats.New++
	}

	slog.Info("Feed processed",
		"feed", source.URL,
		"title", source.DisplayTitle(),
		"total", stats.Total,
		"invalid", stats.Invalid,
		"duplicates", stats.Duplicates,
		"out_of_scope", stats.OutOfScope,
		"new", stats.New)

	return selected, stats
}

func (p *Processor) extractBody(ctx context.Context, source *Source, entry *Entry) {
	html, err := p.extractor.Extract(ctx, entry.Link)
	if err != nil {
		slog.Warn("Failed to extract article content", "feed", source.URL, "entry", entry.ID, "url", entry.Link, "error", err)
		return
	}

	body, ok := p.normalizer.RenderBody(html)
	if !ok {
		slog.Warn("Extracted article rendered empty", "feed", source.URL, "entry", entry.ID)
		return
	}

	entry.Body = body
	entry.BodyMissing = false
}
