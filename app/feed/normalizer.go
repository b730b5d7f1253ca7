package feed

import (
	"cmp"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps raw items to entries. Malformed fields degrade to
// defaults and are logged; it never fails on input.
type Normalizer struct {
	renderer *Renderer
	location *time.Location // reference zone for timestamps without an offset
}

func NewNormalizer(renderer *Renderer, location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{
		renderer: renderer,
		location: location,
	}
}

// Run returns false when the item has neither an ID nor a link.
func (n *Normalizer) Run(raw RawEntry) (entry Entry, ok bool) {
	id := cmp.Or(strings.TrimSpace(raw.GUID), strings.TrimSpace(raw.Link))
	if id == "" {
		return Entry{}, false
	}

	entry = Entry{
		ID:    id,
		Title: DefaultTitle,
		Link:  strings.TrimSpace(raw.Link),
	}

	if title := strings.TrimSpace(raw.Title); title != "" {
		entry.Title = norm.NFC.String(title)
	}

	entry.Body, entry.BodyMissing = n.renderBody(raw, id)
	entry.PublishedAt = n.parseTimestamp(raw, id)

	return entry, true
}

// RenderBody renders fetched article HTML, returning false when nothing usable came out.
func (n *Normalizer) RenderBody(html string) (string, bool) {
	body, err := n.renderer.Run(html)
	if err != nil || body == "" {
		return "", false
	}
	return body, true
}

func (n *Normalizer) renderBody(raw RawEntry, id string) (string, bool) {
	html := cmp.Or(strings.TrimSpace(raw.Content), strings.TrimSpace(raw.Description))
	if html == "" {
		return DefaultBody, true
	}

	body, err := n.renderer.Run(html)
	if err != nil {
		slog.Warn("Failed to render entry body, using raw text", "entry", id, "error", err)
		return html, false
	}
	if body == "" {
		return DefaultBody, true
	}

	return body, false
}

// parseTimestamp prefers the published date over the updated one. gofeed reads
// zone-less strings as UTC, so those are parsed again in the reference zone.
func (n *Normalizer) parseTimestamp(raw RawEntry, id string) *time.Time {
	candidates := []struct {
		value  string
		parsed *time.Time
	}{
		{raw.Published, raw.PublishedParsed},
		{raw.Updated, raw.UpdatedParsed},
	}

	for _, c := range candidates {
		if t, ok := n.resolveTimestamp(strings.TrimSpace(c.value), c.parsed, id); ok {
			return &t
		}
	}

	slog.Warn("Entry has no usable timestamp", "entry", id)
	return nil
}

func (n *Normalizer) resolveTimestamp(value string, parsed *time.Time, id string) (time.Time, bool) {
	if value != "" && !hasZone(value) {
		if t, err := dateparse.ParseIn(value, n.location); err == nil {
			return t.UTC(), true
		}
	}

	if parsed != nil {
		return parsed.UTC(), true
	}

	if value == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(value, n.location)
	if err != nil {
		slog.Warn("Failed to parse entry timestamp", "entry", id, "value", value, "error", err)
		return time.Time{}, false
	}

	return t.UTC(), true
}

var offsetZone = time.FixedZone("", 5*3600+30*60)

// hasZone reports whether value pins an instant on its own. A zone-less value
// parses to different instants in two different locations. Unparseable values
// count as zoned so the caller falls back to what gofeed produced.
func hasZone(value string) bool {
	inUTC, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return true
	}
	inOffset, err := dateparse.ParseIn(value, offsetZone)
	if err != nil {
		return true
	}
	return inUTC.Equal(inOffset)
}
