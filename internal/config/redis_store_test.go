package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousum/internal/domain"
)

func TestOpenRedisStore_InvalidURL(t *testing.T) {
	_, err := OpenRedisStore("not-a-redis-url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse Redis URL")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("YOUSUM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("YOUSUM_TEST_REDIS_URL not set")
	}

	store, err := OpenRedisStore(url, "yousum-test")
	require.NoError(t, err)
	defer store.Close()
	defer store.client.Del(t.Context(), store.key)

	want := domain.Settings{Length: domain.LengthLong, FocusAreas: []string{"key_points"}, Language: "ru"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
