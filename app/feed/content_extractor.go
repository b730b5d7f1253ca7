package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const pageAccept = "text/html, application/xhtml+xml;q=0.9, */*;q=0.5"

// Extractor produces article HTML for an entry link.
type Extractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

var _ Extractor = (*ContentExtractor)(nil)

type ContentExtractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewContentExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *ContentExtractor {
	return &ContentExtractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Extract downloads the page at link and runs readability on it.
func (e *ContentExtractor) Extract(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("entry has no link")
	}

	data, contentType, err := fetchURL(ctx, e.httpClient, link, e.userAgent, pageAccept, e.timeout)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}

	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return "", fmt.Errorf("content type is not HTML: %s", contentType)
	}

	pageURL, _ := url.Parse(link)
	return e.Run(data, pageURL)
}

func (e *ContentExtractor) Run(data []byte, pageURL *url.URL) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return article.Content, nil
}
