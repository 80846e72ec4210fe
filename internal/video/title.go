package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FallbackTitle is used when no title can be read from the watch page.
const FallbackTitle = "YouTube Video"

const maxPageBytes = 4 << 20

// TitleResolver reads a video's display title from its watch page.
type TitleResolver struct {
	client    *http.Client
	userAgent string
}

// NewTitleResolver creates a resolver. A nil client gets a 10s timeout default.
func NewTitleResolver(client *http.Client, userAgent string) *TitleResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "yousum"
	}
	return &TitleResolver{client: client, userAgent: userAgent}
}

// Resolve returns the watch page title. Any failure yields FallbackTitle
// together with the error, so callers can log and carry on.
func (r *TitleResolver) Resolve(ctx context.Context, watchURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return FallbackTitle, fmt.Errorf("build title request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := r.client.Do(req)
	if err != nil {
		return FallbackTitle, fmt.Errorf("fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FallbackTitle, fmt.Errorf("fetch watch page: unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return FallbackTitle, fmt.Errorf("parse watch page: %w", err)
	}
	return TitleFromDocument(doc), nil
}

// TitleFromDocument prefers og:title, then <title> without the site suffix.
func TitleFromDocument(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimSpace(strings.TrimSuffix(title, "- YouTube"))
	if title == "" {
		return FallbackTitle
	}
	return title
}
