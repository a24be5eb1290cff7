package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client, DefaultConfig()), mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestRedis(t)

	key := PatternKey("01HX", 3)
	require.NoError(t, c.Set(ctx, key, []byte(`{"name":"Hero"}`), 0))
	assert.True(t, mr.Exists("pagex:pattern:01HX:v3"))
	assert.Equal(t, DefaultConfig().DefaultTTL, mr.TTL("pagex:pattern:01HX:v3"))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Hero"}`, string(got))

	require.NoError(t, c.Delete(ctx, key))
	_, err = c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestRedis_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Cache: DefaultConfig()})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = NewRedis(context.Background(), RedisConfig{Addr: "127.0.0.1:1", Cache: DefaultConfig()})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	_, err := c.Get(context.Background(), "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestETag(t *testing.T) {
	a := ETag([]byte(`{"a":1}`))
	assert.Equal(t, a, ETag([]byte(`{"a":1}`)))
	assert.NotEqual(t, a, ETag([]byte(`{"a":2}`)))
	assert.True(t, len(a) > 2 && a[0] == '"' && a[len(a)-1] == '"')

	assert.True(t, MatchesIfNoneMatch(a, a))
	assert.True(t, MatchesIfNoneMatch(`"x", W/`+a, a))
	assert.True(t, MatchesIfNoneMatch("*", a))
	assert.False(t, MatchesIfNoneMatch("", a))
	assert.False(t, MatchesIfNoneMatch(`"other"`, a))
}
