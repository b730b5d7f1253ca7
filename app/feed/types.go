package feed

import (
	"cmp"
	"time"
)

const (
	DefaultTitle = "Untitled"
	DefaultBody  = "No description available."
)

// Source is a configured feed, identified by its URL.
type Source struct {
	URL   string
	Title string // refreshed from the last successful fetch
}

func NewSource(url string) *Source {
	return &Source{URL: url}
}

// DisplayTitle returns the fetched feed title, or the URL when none is known yet.
func (s *Source) DisplayTitle() string {
	return cmp.Or(s.Title, s.URL)
}

// Feed is the result of fetching and parsing one source.
type Feed struct {
	Title   string
	Link    string
	Entries []RawEntry
}

// RawEntry carries the fields of a parsed item before normalization.
type RawEntry struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string

	Published       string
	Updated         string
	PublishedParsed *time.Time
	UpdatedParsed   *time.Time
}

// Entry is the canonical form of a feed item.
type Entry struct {
	ID          string
	Title       string
	Link        string
	Body        string
	BodyMissing bool       // Body is the placeholder
	PublishedAt *time.Time // nil when the source timestamp is absent or unparseable
}
