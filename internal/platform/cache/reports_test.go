package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeReport struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReportCache(client, time.Minute), mr
}

func TestReportCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var missed fakeReport
	require.ErrorIs(t, c.Get(ctx, "company:2025", &missed), ErrMiss)

	require.NoError(t, c.Set(ctx, "company:2025", fakeReport{Name: "company", Total: 1200.50}))

	var got fakeReport
	require.NoError(t, c.Get(ctx, "company:2025", &got))
	require.Equal(t, "company", got.Name)
	require.InDelta(t, 1200.50, got.Total, 0.001)
}

func TestReportCacheInvalidateAll(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "company:2025", fakeReport{Name: "a"}))
	require.NoError(t, c.Set(ctx, "client:42", fakeReport{Name: "b"}))

	require.NoError(t, c.InvalidateAll(ctx))

	var got fakeReport
	require.ErrorIs(t, c.Get(ctx, "company:2025", &got), ErrMiss)
	require.ErrorIs(t, c.Get(ctx, "client:42", &got), ErrMiss)
}

func TestReportCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "client:7", fakeReport{Name: "c"}))
	mr.FastForward(2 * time.Minute)

	var got fakeReport
	require.ErrorIs(t, c.Get(ctx, "client:7", &got), ErrMiss)
}

func TestReportCacheNilClientDegrades(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()
	var got fakeReport
	require.ErrorIs(t, c.Get(ctx, "x", &got), ErrMiss)
	require.NoError(t, c.Set(ctx, "x", got))
	require.NoError(t, c.InvalidateAll(ctx))
}
