package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-hook/app/feed"
)

type feedFetcher interface {
	Fetch(ctx context.Context, source *feed.Source) (*feed.Feed, error)
}

var _ feedFetcher = (*feed.Processor)(nil)

// FetchFeedTask downloads one feed and keeps the result for the poll goroutine.
type FetchFeedTask struct {
	Task
	Source  *feed.Source
	fetcher feedFetcher

	Feed *feed.Feed
	Err  error
}

func NewFetchFeedTask(source *feed.Source, fetcher feedFetcher) *FetchFeedTask {
	return &FetchFeedTask{
		Task:    NewTask(TaskTypeFetchFeed, source.URL),
		Source:  source,
		fetcher: fetcher,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		t.Err = ctx.Err()
		return t.Err
	default:
	}

	t.Feed, t.Err = t.fetcher.Fetch(ctx, t.Source)
	if t.Err != nil {
		return t.Err
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedURL,
		"duration", t.GetDuration(),
		"entries", len(t.Feed.Entries))

	return nil
}

// Done reports whether the task ran, successfully or not.
func (t *FetchFeedTask) Done() bool {
	return t.Feed != nil || t.Err != nil
}
