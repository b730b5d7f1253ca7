package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInterval       = 300 // seconds
	DefaultMaxPostAgeDays = 7
	DefaultTimeout        = 30 // seconds
	DefaultMaxSeenPerFeed = 1000
	DefaultDeliveryRate   = 1.0
	DefaultDeliveryBurst  = 5
)

// ErrMissingSetting is returned when a required key is absent from the settings file.
var ErrMissingSetting = errors.New("missing required setting")

// Loader handles loading and validation of the settings file
type Loader struct {
	path string
}

// NewLoader creates a new settings loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, defaults and validates the settings file
func (l *Loader) Load() (*Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", l.path, err)
	}

	settings, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", l.path, err)
	}

	slog.Debug("Settings loaded",
		"path", l.path,
		"feeds", len(settings.Feeds),
		"sink", settings.Sink(),
		"interval", settings.GetInterval(),
		"max_age", settings.GetMaxAge())

	return settings, nil
}

// Parse decodes settings from YAML, applies defaults and validates them
func Parse(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&settings)

	if err := validate(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

func setDefaults(settings *Settings) {
	feeds := make([]string, 0, len(settings.Feeds))
	for _, feedURL := range settings.Feeds {
		feedURL = strings.TrimSpace(feedURL)
		if feedURL == "" {
			slog.Warn("Empty feed URL in settings, skipping")
			continue
		}
		feeds = append(feeds, feedURL)
	}
	settings.Feeds = feeds
	settings.WebhookURL = strings.TrimSpace(settings.WebhookURL)

	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}
	if settings.DeliveryRate == 0 {
		settings.DeliveryRate = DefaultDeliveryRate
	}
	if settings.DeliveryBurst == 0 {
		settings.DeliveryBurst = DefaultDeliveryBurst
	}
}

func validate(settings *Settings) error {
	if len(settings.Feeds) == 0 {
		return fmt.Errorf("%w: feeds", ErrMissingSetting)
	}

	for i, feedURL := range settings.Feeds {
		if _, err := url.ParseRequestURI(feedURL); err != nil {
			return fmt.Errorf("invalid feed URL at index %d: %s", i, feedURL)
		}
	}

	hasWebhook := settings.WebhookURL != ""
	hasKafka := len(settings.Kafka.Brokers) > 0 || settings.Kafka.Topic != ""

	switch {
	case !hasWebhook && !hasKafka:
		return fmt.Errorf("%w: webhook_url (or kafka.brokers and kafka.topic)", ErrMissingSetting)
	case hasWebhook && hasKafka:
		return fmt.Errorf("exactly one sink must be configured, got both webhook_url and kafka")
	case hasWebhook:
		if _, err := url.ParseRequestURI(settings.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook_url: %s", settings.WebhookURL)
		}
	case len(settings.Kafka.Brokers) == 0:
		return fmt.Errorf("%w: kafka.brokers", ErrMissingSetting)
	case settings.Kafka.Topic == "":
		return fmt.Errorf("%w: kafka.topic", ErrMissingSetting)
	}

	nonNegativeFields := map[string]*int{
		"interval":          settings.Interval,
		"max_post_age_days": settings.MaxPostAgeDays,
		"max_seen_per_feed": settings.MaxSeenPerFeed,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue != nil && *fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if settings.DeliveryRate < 0 {
		return fmt.Errorf("delivery_rate must be non-negative")
	}
	if settings.DeliveryBurst < 0 {
		return fmt.Errorf("delivery_burst must be non-negative")
	}

	return nil
}
