package config

import (
	"time"
)

// GetInterval returns the poll interval; zero means run a single pass.
func (s *Settings) GetInterval() time.Duration {
	if s.Interval == nil {
		return DefaultInterval * time.Second
	}
	return time.Duration(*s.Interval) * time.Second
}

// GetMaxAge returns the recency window as a duration.
func (s *Settings) GetMaxAge() time.Duration {
	if s.MaxPostAgeDays == nil {
		return DefaultMaxPostAgeDays * 24 * time.Hour
	}
	return time.Duration(*s.MaxPostAgeDays) * 24 * time.Hour
}

// GetTimeout returns the timeout as time.Duration
func (s *Settings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

func (s *Settings) GetMaxSeenPerFeed() int {
	if s.MaxSeenPerFeed == nil {
		return DefaultMaxSeenPerFeed
	}
	return *s.MaxSeenPerFeed
}

// Sink reports which delivery target is configured.
func (s *Settings) Sink() SinkType {
	if s.WebhookURL != "" {
		return SinkWebhook
	}
	return SinkKafka
}
