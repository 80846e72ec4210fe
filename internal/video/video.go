package video

import (
	"errors"
	"net/url"
	"strings"
)

const watchMarker = "youtube.com/watch"

// ErrNotWatchURL is returned for URLs that do not point at a YouTube video.
var ErrNotWatchURL = errors.New("not a youtube watch url")

// IsWatchURL reports whether raw looks like a YouTube watch page.
func IsWatchURL(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// Normalize trims raw and returns a watch URL. Short youtu.be links are
// expanded to their watch form.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrNotWatchURL
	}
	if strings.Contains(trimmed, watchMarker) {
		return trimmed, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrNotWatchURL
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host != "youtu.be" {
		return "", ErrNotWatchURL
	}
	id := strings.Trim(parsed.Path, "/")
	if id == "" || strings.Contains(id, "/") {
		return "", ErrNotWatchURL
	}

	query := url.Values{}
	query.Set("v", id)
	if t := parsed.Query().Get("t"); t != "" {
		query.Set("t", t)
	}
	return "https://www.youtube.com/watch?" + query.Encode(), nil
}

// VideoID extracts the v parameter of a watch URL, or "" when absent.
func VideoID(raw string) string {
	normalized, err := Normalize(raw)
	if err != nil {
		return ""
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("v")
}
