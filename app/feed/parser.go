package feed

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/mmcdole/gofeed"
)

// Parser is safe for concurrent use; gofeed parsers are not, so calls are serialized.
type Parser struct {
	mu           sync.Mutex
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Feed, error) {
	p.mu.Lock()
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &Feed{
		Title:   parsed.Title,
		Link:    parsed.Link,
		Entries: make([]RawEntry, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Entries = append(feed.Entries, p.toRawEntry(item))
	}

	return feed, nil
}

func (p *Parser) toRawEntry(item *gofeed.Item) RawEntry {
	return RawEntry{
		GUID:            item.GUID,
		Title:           item.Title,
		Link:            item.Link,
		Description:     item.Description,
		Content:         item.Content,
		Published:       item.Published,
		Updated:         item.Updated,
		PublishedParsed: item.PublishedParsed,
		UpdatedParsed:   item.UpdatedParsed,
	}
}
