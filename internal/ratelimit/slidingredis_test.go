package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.UnixMilli(1_700_000_000_000)
	limiter := Limiter{Client: client, Prefix: "test:", Now: func() time.Time { return now }}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	first := now
	for i := 0; i < max; i++ {
		d, err := limiter.Allow(ctx, "key", window, max)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		require.Equal(t, max-(i+1), d.Remaining)
		now = now.Add(100 * time.Millisecond)
	}

	d, err := limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)
	require.Equal(t, first.Add(window), d.ResetAt)

	// rejected attempts are not recorded
	n, err := client.ZCard(ctx, "test:key").Result()
	require.NoError(t, err)
	require.Equal(t, int64(max), n)

	now = first.Add(window)
	d, err = limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	d, err := Limiter{}.Allow(context.Background(), "key", time.Second, 3)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 3, d.Remaining)
}
