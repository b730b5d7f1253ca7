package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(location *time.Location) *Normalizer {
	return NewNormalizer(NewRenderer(), location)
}

func TestNormalizerIdentity(t *testing.T) {
	n := newTestNormalizer(nil)

	tests := []struct {
		name     string
		raw      RawEntry
		ok       bool
		expected string
	}{
		{name: "guid wins", raw: RawEntry{GUID: "g-1", Link: "https://example.com/1"}, ok: true, expected: "g-1"},
		{name: "link fallback", raw: RawEntry{Link: "https://example.com/1"}, ok: true, expected: "https://example.com/1"},
		{name: "blank guid falls back", raw: RawEntry{GUID: "   ", Link: "https://example.com/2"}, ok: true, expected: "https://example.com/2"},
		{name: "neither", raw: RawEntry{Title: "orphan"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := n.Run(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, entry.ID)
		})
	}
}

func TestNormalizerDefaults(t *testing.T) {
	n := newTestNormalizer(nil)

	entry, ok := n.Run(RawEntry{GUID: "x"})
	require.True(t, ok)

	assert.Equal(t, DefaultTitle, entry.Title)
	assert.Equal(t, DefaultBody, entry.Body)
	assert.True(t, entry.BodyMissing)
	assert.Nil(t, entry.PublishedAt)
}

func TestNormalizerTitleIsNFC(t *testing.T) {
	n := newTestNormalizer(nil)

	entry, ok := n.Run(RawEntry{GUID: "x", Title: "  Cafe\u0301  "})
	require.True(t, ok)
	assert.Equal(t, "Caf\u00e9", entry.Title)
}

func TestNormalizerBody(t *testing.T) {
	n := newTestNormalizer(nil)

	t.Run("content preferred over description", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{
			GUID:        "x",
			Description: "<p>summary</p>",
			Content:     `<p>full <a href="https://example.com">text</a></p>`,
		})
		assert.Equal(t, "full [text](https://example.com)", entry.Body)
		assert.False(t, entry.BodyMissing)
	})

	t.Run("description used when content empty", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", Description: "<p>summary</p>"})
		assert.Equal(t, "summary", entry.Body)
		assert.False(t, entry.BodyMissing)
	})

	t.Run("image only renders to placeholder", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", Content: `<img src="https://example.com/a.png">`})
		assert.Equal(t, DefaultBody, entry.Body)
		assert.True(t, entry.BodyMissing)
	})
}

func TestNormalizerTimestamp(t *testing.T) {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	updated := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	n := newTestNormalizer(nil)

	t.Run("published preferred and converted to UTC", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", PublishedParsed: &published, UpdatedParsed: &updated})
		require.NotNil(t, entry.PublishedAt)
		assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *entry.PublishedAt)
		assert.Equal(t, time.UTC, entry.PublishedAt.Location())
	})

	t.Run("updated fallback", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", UpdatedParsed: &updated})
		require.NotNil(t, entry.PublishedAt)
		assert.True(t, entry.PublishedAt.Equal(updated))
	})

	t.Run("lenient string parse", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", Published: "2024-03-05T08:30:00Z"})
		require.NotNil(t, entry.PublishedAt)
		assert.True(t, entry.PublishedAt.Equal(time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)))
	})

	t.Run("updated string used when published garbage", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", Published: "not a date", Updated: "2024-03-06 09:00:00"})
		require.NotNil(t, entry.PublishedAt)
		assert.True(t, entry.PublishedAt.Equal(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)))
	})

	t.Run("unparseable", func(t *testing.T) {
		entry, _ := n.Run(RawEntry{GUID: "x", Published: "sometime last week"})
		assert.Nil(t, entry.PublishedAt)
	})
}

func TestNormalizerZonelessTimestampUsesReferenceZone(t *testing.T) {
	cet := time.FixedZone("CET", 3600)

	tests := []struct {
		name     string
		pubDate  string
		expected time.Time
	}{
		{
			name:     "zone-less date time",
			pubDate:  "2024-03-10 10:00:00",
			expected: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "numeric offset kept",
			pubDate:  "Sun, 10 Mar 2024 10:00:00 +0000",
			expected: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "GMT kept",
			pubDate:  "Sun, 10 Mar 2024 10:00:00 GMT",
			expected: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC 3339 with offset kept",
			pubDate:  "2024-03-10T10:00:00+02:00",
			expected: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := NewParser().Run([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Zones</title>
<item><guid>z</guid><title>Zoned</title><pubDate>` + tt.pubDate + `</pubDate></item>
</channel></rss>`))
			require.NoError(t, err)
			require.Len(t, parsed.Entries, 1)

			entry, ok := newTestNormalizer(cet).Run(parsed.Entries[0])
			require.True(t, ok)
			require.NotNil(t, entry.PublishedAt)
			assert.Equal(t, tt.expected, *entry.PublishedAt)
		})
	}
}

func TestNormalizerZonelessTimestampWithoutParsedValue(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)

	entry, ok := newTestNormalizer(tokyo).Run(RawEntry{GUID: "x", Published: "2024-03-05 09:00:00"})
	require.True(t, ok)
	require.NotNil(t, entry.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *entry.PublishedAt)
}

func TestHasZone(t *testing.T) {
	assert.False(t, hasZone("2024-03-10 10:00:00"))
	assert.False(t, hasZone("2024-03-10"))
	assert.True(t, hasZone("2024-03-10T10:00:00Z"))
	assert.True(t, hasZone("Sun, 10 Mar 2024 10:00:00 -0500"))
	assert.True(t, hasZone("not a date"))
}

func TestNormalizerRenderBody(t *testing.T) {
	n := newTestNormalizer(nil)

	body, ok := n.RenderBody("<article><p>Extracted paragraph.</p></article>")
	assert.True(t, ok)
	assert.Equal(t, "Extracted paragraph.", body)

	_, ok = n.RenderBody(`<img src="a.png">`)
	assert.False(t, ok)
}
