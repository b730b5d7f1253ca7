package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/rss-hook/app/feed"
)

// Message is the sink-independent shape of one delivered entry.
type Message struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"` // RFC 3339 UTC, empty when unknown
}

// NewMessage builds the message for entry under the given feed title.
func NewMessage(feedTitle string, entry feed.Entry) Message {
	msg := Message{
		Title: fmt.Sprintf("[%s] %s", feedTitle, entry.Title),
		URL:   entry.Link,
		Body:  entry.Body,
	}

	if entry.PublishedAt != nil {
		msg.Timestamp = entry.PublishedAt.UTC().Format(time.RFC3339)
	}

	return msg
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
