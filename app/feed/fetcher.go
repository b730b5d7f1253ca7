package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Feed, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads a feed and parses it with gofeed.
type HTTPFetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewHTTPFetcher(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Feed, error) {
	data, _, err := fetchURL(ctx, f.httpClient, url, f.userAgent, feedAccept, f.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed fetched", "feed", url, "title", feed.Title, "entries", len(feed.Entries))
	return feed, nil
}

func fetchURL(ctx context.Context, client *http.Client, url, userAgent, accept string, timeout time.Duration) ([]byte, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	return data, resp.Header.Get("Content-Type"), nil
}
