package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "watch url", raw: "https://www.youtube.com/watch?v=V1", want: "https://www.youtube.com/watch?v=V1"},
		{name: "trimmed", raw: "  https://youtube.com/watch?v=abc \n", want: "https://youtube.com/watch?v=abc"},
		{name: "short link", raw: "https://youtu.be/abc123", want: "https://www.youtube.com/watch?v=abc123"},
		{name: "short link with time", raw: "https://youtu.be/abc123?t=42", want: "https://www.youtube.com/watch?t=42&v=abc123"},
		{name: "channel page", raw: "https://www.youtube.com/@someone", wantErr: true},
		{name: "other site", raw: "https://example.com/watch?v=1", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrNotWatchURL)
				assert.False(t, IsWatchURL(tc.raw))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, IsWatchURL(tc.raw))
		})
	}
}

func TestVideoID(t *testing.T) {
	assert.Equal(t, "V1", VideoID("https://www.youtube.com/watch?v=V1&list=x"))
	assert.Equal(t, "abc", VideoID("https://youtu.be/abc"))
	assert.Empty(t, VideoID("https://example.com"))
}

func TestTitleResolverPrefersOpenGraph(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<html><head><title>Page - YouTube</title><meta property="og:title" content="Real Title"></head></html>`))
	}))
	defer server.Close()

	title, err := NewTitleResolver(server.Client(), "test-agent").Resolve(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Real Title", title)
}

func TestTitleResolverFallsBackToTitleTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Drama Trailer - YouTube</title></head></html>`))
	}))
	defer server.Close()

	title, err := NewTitleResolver(server.Client(), "").Resolve(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Drama Trailer", title)
}

func TestTitleResolverFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	title, err := NewTitleResolver(server.Client(), "").Resolve(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, FallbackTitle, title)
}
