package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m := NewMemory(3, time.Hour)
	m.SetClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "parent@example.com")
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := m.Allow(ctx, "parent@example.com"); ok {
		t.Fatal("4th request inside the window must be denied")
	}

	// The window slides: once the oldest hit ages out, one slot frees up.
	now = now.Add(time.Hour + time.Minute)
	if ok, _ := m.Allow(ctx, "parent@example.com"); !ok {
		t.Fatal("request after the window must be allowed")
	}
}

// Throttling is per key: one address hitting the limit must not affect
// another.
func TestMemory_KeysAreIndependent(t *testing.T) {
	m := NewMemory(1, time.Hour)
	ctx := context.Background()

	if ok, _ := m.Allow(ctx, "a@example.com"); !ok {
		t.Fatal("first a@ request should pass")
	}
	if ok, _ := m.Allow(ctx, "a@example.com"); ok {
		t.Fatal("second a@ request should be denied")
	}
	if ok, _ := m.Allow(ctx, "b@example.com"); !ok {
		t.Fatal("b@ must not be throttled by a@'s traffic")
	}
}

func TestRedis_SlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	lim := NewRedis(rdb, 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := lim.Allow(ctx, "parent@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := lim.Allow(ctx, "parent@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "3rd request inside the window")

	ok, err = lim.Allow(ctx, "other@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "other keys stay unthrottled")

	// Aging the entries past the window frees the key again.
	mr.FastForward(time.Hour + time.Minute)
	ok, err = lim.Allow(ctx, "parent@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "request after the window")
}

func TestRedis_SetsExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	lim := NewRedis(rdb, 5, time.Hour)
	_, err := lim.Allow(context.Background(), "parent@example.com")
	require.NoError(t, err)

	ttl := mr.TTL("ratelimit:parent@example.com")
	assert.Equal(t, time.Hour, ttl)
}
