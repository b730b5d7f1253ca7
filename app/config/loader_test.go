package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidSettings(t *testing.T) {
	path := writeSettings(t, `
webhook_url: "https://discord.com/api/webhooks/1/abc"
interval: 600
max_post_age_days: 2
timeout: 15
max_seen_per_feed: 50
extract_content: true
feeds:
  - "https://example.com/feed.xml"
  - "  https://example.org/atom.xml  "
`)

	settings, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(settings.Feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(settings.Feeds))
	}
	if settings.Feeds[1] != "https://example.org/atom.xml" {
		t.Errorf("Expected trimmed feed URL, got '%s'", settings.Feeds[1])
	}
	if settings.Sink() != SinkWebhook {
		t.Errorf("Expected webhook sink, got %s", settings.Sink())
	}
	if settings.GetInterval() != 600*time.Second {
		t.Errorf("Expected interval 600s, got %v", settings.GetInterval())
	}
	if settings.GetMaxAge() != 48*time.Hour {
		t.Errorf("Expected max age 48h, got %v", settings.GetMaxAge())
	}
	if settings.GetTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", settings.GetTimeout())
	}
	if settings.GetMaxSeenPerFeed() != 50 {
		t.Errorf("Expected max seen per feed 50, got %d", settings.GetMaxSeenPerFeed())
	}
	if !settings.ExtractContent {
		t.Error("Expected content extraction to be enabled")
	}
}

func TestLoadSettingsWithDefaults(t *testing.T) {
	path := writeSettings(t, `
webhook_url: "https://discord.com/api/webhooks/1/abc"
feeds:
  - "https://example.com/feed.xml"
`)

	settings, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if settings.GetInterval() != 300*time.Second {
		t.Errorf("Expected default interval 300s, got %v", settings.GetInterval())
	}
	if settings.GetMaxAge() != 7*24*time.Hour {
		t.Errorf("Expected default max age 7 days, got %v", settings.GetMaxAge())
	}
	if settings.GetTimeout() != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", settings.GetTimeout())
	}
	if settings.GetMaxSeenPerFeed() != DefaultMaxSeenPerFeed {
		t.Errorf("Expected default max seen per feed %d, got %d", DefaultMaxSeenPerFeed, settings.GetMaxSeenPerFeed())
	}
	if settings.DeliveryRate != DefaultDeliveryRate || settings.DeliveryBurst != DefaultDeliveryBurst {
		t.Errorf("Expected default delivery rate/burst, got %v/%d", settings.DeliveryRate, settings.DeliveryBurst)
	}
}

func TestZeroIntervalIsRunOnce(t *testing.T) {
	settings, err := Parse([]byte(`
webhook_url: "https://discord.com/api/webhooks/1/abc"
interval: 0
max_post_age_days: 0
feeds: ["https://example.com/feed.xml"]
`))
	if err != nil {
		t.Fatal(err)
	}

	if settings.GetInterval() != 0 {
		t.Errorf("Expected zero interval, got %v", settings.GetInterval())
	}
	if settings.GetMaxAge() != 0 {
		t.Errorf("Expected zero max age, got %v", settings.GetMaxAge())
	}
}

func TestKafkaSink(t *testing.T) {
	settings, err := Parse([]byte(`
kafka:
  brokers: ["localhost:9092"]
  topic: "entries"
feeds: ["https://example.com/feed.xml"]
`))
	if err != nil {
		t.Fatal(err)
	}

	if settings.Sink() != SinkKafka {
		t.Errorf("Expected kafka sink, got %s", settings.Sink())
	}
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{
			name:    "no feeds",
			content: `webhook_url: "https://discord.com/api/webhooks/1/abc"`,
			missing: true,
		},
		{
			name:    "only blank feeds",
			content: "webhook_url: \"https://discord.com/api/webhooks/1/abc\"\nfeeds: [\"  \"]",
			missing: true,
		},
		{
			name:    "no sink",
			content: `feeds: ["https://example.com/feed.xml"]`,
			missing: true,
		},
		{
			name:    "kafka without topic",
			content: "kafka:\n  brokers: [\"localhost:9092\"]\nfeeds: [\"https://example.com/feed.xml\"]",
			missing: true,
		},
		{
			name:    "two sinks",
			content: "webhook_url: \"https://example.com/hook\"\nkafka:\n  brokers: [\"localhost:9092\"]\n  topic: t\nfeeds: [\"https://example.com/feed.xml\"]",
		},
		{
			name:    "invalid feed URL",
			content: "webhook_url: \"https://example.com/hook\"\nfeeds: [\"not a url\"]",
		},
		{
			name:    "negative max age",
			content: "webhook_url: \"https://example.com/hook\"\nmax_post_age_days: -1\nfeeds: [\"https://example.com/feed.xml\"]",
		},
		{
			name:    "negative interval",
			content: "webhook_url: \"https://example.com/hook\"\ninterval: -5\nfeeds: [\"https://example.com/feed.xml\"]",
		},
		{
			name:    "malformed YAML",
			content: "feeds: [unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("Expected error for invalid settings")
			}
			if tt.missing && !errors.Is(err, ErrMissingSetting) {
				t.Errorf("Expected ErrMissingSetting, got: %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yml")).Load()
	if err == nil {
		t.Error("Expected error for missing settings file")
	}
}
