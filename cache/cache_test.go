package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/svgtidy-playground"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

type countingOptimizer struct {
	calls int
	fail  bool
}

func (c *countingOptimizer) Optimize(_ context.Context, svg string) (string, error) {
	c.calls++
	if c.fail {
		return "", errors.New("parse error")
	}
	return strings.ReplaceAll(svg, " ", ""), nil
}

var _ svgtidy.Optimizer = (*Optimizer)(nil)

func TestKey(t *testing.T) {
	k := Key("<svg/>")
	assert.True(t, strings.HasPrefix(k, "svgtidy:opt:"))
	assert.Len(t, k, len("svgtidy:opt:")+64)
	assert.Equal(t, k, Key("<svg/>"))
	assert.NotEqual(t, k, Key("<svg />"))
}

func TestCache_GetSet(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := New(client, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "<svg />")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "<svg />", "<svg/>"))
	out, ok, err := c.Get(ctx, "<svg />")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<svg/>", out)

	assert.Equal(t, time.Minute, mr.TTL(Key("<svg />")))
	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "<svg />")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")
}

func TestOptimizer_HitSkipsNext(t *testing.T) {
	client, _ := setupTestRedis(t)
	next := &countingOptimizer{}
	opt := Wrap(next, New(client, time.Hour), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := opt.Optimize(ctx, "<svg />")
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", out)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, opt.Stats())
}

func TestOptimizer_FailuresNotCached(t *testing.T) {
	client, mr := setupTestRedis(t)
	next := &countingOptimizer{fail: true}
	opt := Wrap(next, New(client, time.Hour), nil)
	ctx := context.Background()

	_, err := opt.Optimize(ctx, "<broken")
	require.Error(t, err)
	_, err = opt.Optimize(ctx, "<broken")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.False(t, mr.Exists(Key("<broken")))
}

func TestOptimizer_RedisDownFallsThrough(t *testing.T) {
	client, mr := setupTestRedis(t)
	next := &countingOptimizer{}
	opt := Wrap(next, New(client, time.Hour), nil)
	mr.Close()

	out, err := opt.Optimize(context.Background(), "<svg />")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", out)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, int64(2), opt.Stats().Errors)
}
