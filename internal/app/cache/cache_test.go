package cache

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

func samplePage() Page {
	return Page{
		Status: 200,
		Header: map[string]string{"Content-Type": "text/html; charset=utf-8", "X-Template": "index.html"},
		Body:   []byte("<p>cached</p>"),
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(20 * time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", samplePage()))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePage(), got)

	now = now.Add(20 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Set(ctx, "a", samplePage()))
	require.NoError(t, c.Set(ctx, "b", samplePage()))
	require.NoError(t, c.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		_, ok, _ := c.Get(ctx, k)
		assert.False(t, ok, k)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedis("redis://"+mr.Addr(), 20*time.Second)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", samplePage()))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePage(), got)
	assert.Equal(t, 20*time.Second, mr.TTL(redisPrefix+"k"))

	mr.FastForward(21 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisClearOnlyOwnKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("other:key", "keep"))

	c, err := NewRedis("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, samplePage()))
	}
	require.NoError(t, c.Clear(ctx))

	assert.False(t, mr.Exists(redisPrefix+"a"))
	assert.True(t, mr.Exists("other:key"))
}

func TestNewSelectsBackend(t *testing.T) {
	log := logger.NewDiscard()

	c, err := New(config.CacheConfig{Backend: "memory", TTL: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(config.CacheConfig{Backend: "memory", TTL: 0}, log)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)

	c, err = New(config.CacheConfig{Backend: "none", TTL: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)

	mr := miniredis.RunT(t)
	c, err = New(config.CacheConfig{Backend: "memory", RedisURL: "redis://" + mr.Addr(), TTL: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)
	require.NoError(t, c.Close())

	_, err = New(config.CacheConfig{Backend: "memcached", TTL: time.Second}, log)
	assert.Error(t, err)
}

func TestKeyAndReplay(t *testing.T) {
	assert.Equal(t, "page:/?page=2|-", Key("/?page=2", ""))
	assert.NotEqual(t, Key("/", "ann"), Key("/", "bob"))

	rec := httptest.NewRecorder()
	samplePage().Replay(rec)
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "index.html", rec.Header().Get("X-Template"))
	assert.Equal(t, "<p>cached</p>", rec.Body.String())
}
