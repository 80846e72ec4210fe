package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yousum/internal/domain"
)

const (
	summarizePath  = "/api/summarize"
	transcriptPath = "/api/transcript"

	// maxBodyBytes bounds a single response; long transcripts stay well under it.
	maxBodyBytes = 32 << 20
)

// Client issues summarize, transcript and status requests against one backend.
// It never retries; callers decide what a failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option customizes Client creation.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient validates baseURL and builds a client with a bounded timeout.
func NewClient(baseURL string, timeout time.Duration, options ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https: %q", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("backend url has no host: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "yousum",
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SummarizeQuery encodes the summarize parameters. Focus areas repeat one
// parameter each; an empty selection sends the default area.
func SummarizeQuery(videoURL string, settings domain.Settings) url.Values {
	query := url.Values{}
	query.Set("url", videoURL)
	query.Set("length", string(settings.Length))
	query.Set("language", settings.Language)
	for _, area := range settings.EffectiveFocusAreas() {
		query.Add("focus_areas", area)
	}
	return query
}

// TranscriptQuery encodes the transcript parameters.
func TranscriptQuery(videoURL, language string) url.Values {
	query := url.Values{}
	query.Set("url", videoURL)
	query.Set("language", language)
	return query
}

// TranscriptResultURL maps a generic result path to the transcript result path.
func TranscriptResultURL(resultURL string) string {
	return strings.Replace(resultURL, "/api/result/", "/api/transcript/result/", 1)
}

// Summarize requests a summary. The response is Completed or Processing with
// an absolute ResultURL.
func (c *Client) Summarize(ctx context.Context, videoURL string, settings domain.Settings) (Response, error) {
	endpoint := c.baseURL + summarizePath + "?" + SummarizeQuery(videoURL, settings).Encode()
	return c.start(ctx, "summarize", endpoint, func(ref string) string { return ref })
}

// Transcript requests a transcript. Deferred result URLs are rewritten to the
// transcript result endpoint before they are returned.
func (c *Client) Transcript(ctx context.Context, videoURL, language string) (Response, error) {
	endpoint := c.baseURL + transcriptPath + "?" + TranscriptQuery(videoURL, language).Encode()
	return c.start(ctx, "transcript", endpoint, TranscriptResultURL)
}

// Status queries a result URL once. The response is Completed or Processing.
func (c *Client) Status(ctx context.Context, resultURL string) (Response, error) {
	endpoint, err := c.ResolveURL(resultURL)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Op: "status", Message: "invalid result url", Err: err}
	}

	resp, err := c.get(ctx, "status", endpoint)
	if err != nil {
		return nil, err
	}
	if _, ok := resp.(Processing); ok {
		return Processing{}, nil
	}
	return resp, nil
}

// ResolveURL turns a result reference into an absolute URL. Paths are appended
// to the base URL as-is.
func (c *Client) ResolveURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty url")
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return ref, nil
	}
	if strings.HasPrefix(ref, "/") {
		return c.baseURL + ref, nil
	}
	return c.baseURL + "/" + ref, nil
}

// start performs the initial request for an artifact and validates that a
// deferred answer carries a usable result URL.
func (c *Client) start(ctx context.Context, op, endpoint string, rewrite func(string) string) (Response, error) {
	resp, err := c.get(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	processing, ok := resp.(Processing)
	if !ok {
		return resp, nil
	}
	if processing.ResultURL == "" {
		return nil, &Error{Kind: KindProtocol, Op: op, Message: "backend is processing but returned no result url"}
	}

	resolved, err := c.ResolveURL(rewrite(processing.ResultURL))
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Op: op, Message: "invalid result url", Err: err}
	}
	return Processing{ResultURL: resolved}, nil
}

// get sends one GET and decodes the body. Failed responses become errors.
func (c *Client) get(ctx context.Context, op, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: fmt.Sprintf("request failed: %v", unwrapURLError(err)), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: "read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("backend returned %s", resp.Status)
		if decoded, decodeErr := decodeResponse(body); decodeErr == nil {
			if failed, ok := decoded.(Failed); ok {
				message += ": " + failed.Message
			}
		}
		return nil, &Error{Kind: KindNetwork, Op: op, Message: message, StatusCode: resp.StatusCode}
	}

	decoded, err := decodeResponse(body)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Op: op, Message: "unexpected response from backend", Err: err}
	}
	if failed, ok := decoded.(Failed); ok {
		return nil, &Error{Kind: KindBackend, Op: op, Message: failed.Message}
	}
	return decoded, nil
}

// unwrapURLError strips the method and URL that *url.Error prepends.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
