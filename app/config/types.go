package config

// Settings is the YAML settings file consumed read-only by the poll loop.
type Settings struct {
	Feeds []string `yaml:"feeds"`

	// Exactly one sink must be configured.
	WebhookURL string        `yaml:"webhook_url"`
	Kafka      KafkaSettings `yaml:"kafka"`

	Interval       *int `yaml:"interval"`          // seconds, 0 = single pass
	MaxPostAgeDays *int `yaml:"max_post_age_days"` // days
	Timeout        int  `yaml:"timeout"`           // seconds

	MaxSeenPerFeed *int    `yaml:"max_seen_per_feed"` // 0 = unbounded
	ExtractContent bool    `yaml:"extract_content"`
	DeliveryRate   float64 `yaml:"delivery_rate"` // messages per second
	DeliveryBurst  int     `yaml:"delivery_burst"`
}

type KafkaSettings struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type SinkType string

const (
	SinkWebhook SinkType = "webhook"
	SinkKafka   SinkType = "kafka"
)
