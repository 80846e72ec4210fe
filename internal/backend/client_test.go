package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousum/internal/domain"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return client, server
}

func TestNewClient_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "http://", "::bad"} {
		_, err := NewClient(raw, time.Second)
		assert.Error(t, err, "base url %q", raw)
	}
}

func TestSummarizeQuery_EncodesRepeatedFocusAreas(t *testing.T) {
	query := SummarizeQuery("V", domain.Settings{
		Length:     domain.LengthMedium,
		FocusAreas: []string{"key_points", "action_items"},
		Language:   "en",
	})

	assert.Equal(t, "V", query.Get("url"))
	assert.Equal(t, "medium", query.Get("length"))
	assert.Equal(t, "en", query.Get("language"))
	assert.Equal(t, []string{"key_points", "action_items"}, query["focus_areas"])
}

func TestSummarizeQuery_EmptyFocusAreasSendsDefault(t *testing.T) {
	query := SummarizeQuery("V", domain.Settings{Length: domain.LengthShort, Language: "fr"})
	assert.Equal(t, []string{"balanced_overview"}, query["focus_areas"])
}

func TestSummarize_Completed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summarize", r.URL.Path)
		assert.Equal(t, testVideoURL, r.URL.Query().Get("url"))
		assert.Equal(t, []string{"balanced_overview"}, r.URL.Query()["focus_areas"])
		assert.Equal(t, "yousum", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"status":"completed","video_id":"V1","result":"1. Genre: Drama"}`))
	})

	resp, err := client.Summarize(context.Background(), testVideoURL, domain.Settings{
		Length:   domain.LengthMedium,
		Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, Completed{VideoID: "V1", Result: "1. Genre: Drama"}, resp)
}

func TestSummarize_DeferredResolvesResultURL(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing","result_url":"/api/result/123"}`))
	})

	resp, err := client.Summarize(context.Background(), testVideoURL, domain.Settings{Length: domain.LengthMedium, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Processing{ResultURL: server.URL + "/api/result/123"}, resp)
}

func TestSummarize_ProcessingWithoutResultURLIsProtocolError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	})

	_, err := client.Summarize(context.Background(), testVideoURL, domain.Settings{})
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
}

func TestTranscript_RewritesResultURL(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transcript", r.URL.Path)
		assert.Equal(t, "de", r.URL.Query().Get("language"))
		assert.Empty(t, r.URL.Query().Get("length"))
		_, _ = w.Write([]byte(`{"status":"processing","result_url":"/api/result/77"}`))
	})

	resp, err := client.Transcript(context.Background(), testVideoURL, "de")
	require.NoError(t, err)
	assert.Equal(t, Processing{ResultURL: server.URL + "/api/transcript/result/77"}, resp)
}

func TestGet_NonSuccessStatusIsNetworkFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error","error":"worker offline"}`))
	})

	_, err := client.Summarize(context.Background(), testVideoURL, domain.Settings{})
	require.Error(t, err)

	var backendErr *Error
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, KindNetwork, backendErr.Kind)
	assert.Equal(t, http.StatusBadGateway, backendErr.StatusCode)
	assert.Contains(t, backendErr.Message, "worker offline")
}

func TestGet_BackendReportedFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"video is private"}`))
	})

	_, err := client.Transcript(context.Background(), testVideoURL, "en")
	require.Error(t, err)
	assert.Equal(t, KindBackend, KindOf(err))
	assert.Equal(t, "video is private", UserMessage(err))
}

func TestGet_MalformedBodyIsProtocolFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.Summarize(context.Background(), testVideoURL, domain.Settings{})
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
}

func TestGet_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewClient(baseURL, time.Second)
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), testVideoURL, domain.Settings{})
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestStatus_ProcessingAndCompleted(t *testing.T) {
	calls := 0
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/result/123", r.URL.Path)
		if calls == 1 {
			_, _ = w.Write([]byte(`{"status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed","video_id":"V1","result":"done"}`))
	})

	resp, err := client.Status(context.Background(), server.URL+"/api/result/123")
	require.NoError(t, err)
	assert.Equal(t, Processing{}, resp)

	resp, err = client.Status(context.Background(), "/api/result/123")
	require.NoError(t, err)
	assert.Equal(t, Completed{VideoID: "V1", Result: "done"}, resp)
}

func TestResolveURL(t *testing.T) {
	client, err := NewClient("http://host:5000/", time.Second)
	require.NoError(t, err)

	cases := map[string]string{
		"/api/result/1":             "http://host:5000/api/result/1",
		"api/result/2":              "http://host:5000/api/result/2",
		"https://other/api/result/3": "https://other/api/result/3",
	}
	for ref, want := range cases {
		got, err := client.ResolveURL(ref)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = client.ResolveURL("  ")
	assert.Error(t, err)
}

func TestTranscriptResultURL(t *testing.T) {
	assert.Equal(t, "/api/transcript/result/9", TranscriptResultURL("/api/result/9"))
	assert.Equal(t, "/custom/9", TranscriptResultURL("/custom/9"))
}
