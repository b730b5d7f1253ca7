package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
)

var _ Notifier = (*Webhook)(nil)

type embed struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp,omitempty"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Webhook posts messages as Discord-style embeds.
type Webhook struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	timeout    time.Duration
}

// NewWebhook creates a webhook notifier. A non-positive perSecond disables rate limiting.
func NewWebhook(url string, httpClient *http.Client, perSecond float64, burst int, userAgent string, timeout time.Duration) *Webhook {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &Webhook{
		url:        url,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (w *Webhook) Notify(ctx context.Context, msg Message) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	payload, err := json.Marshal(webhookPayload{Embeds: []embed{newEmbed(msg)}})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, bytes.TrimSpace(detail))
	}

	slog.Debug("Webhook delivered", "title", msg.Title, "request_id", requestID, "status", resp.StatusCode)
	return nil
}

func newEmbed(msg Message) embed {
	return embed{
		Title:       truncate(msg.Title, maxEmbedTitle),
		URL:         msg.URL,
		Description: truncate(msg.Body, maxEmbedDescription),
		Timestamp:   msg.Timestamp,
	}
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
