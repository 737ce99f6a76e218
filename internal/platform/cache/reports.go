package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss indicates the key is absent; callers rebuild the report.
var ErrMiss = errors.New("cache miss")

const reportPrefix = "freightbox:report:"

// ReportCache stores rendered ledger reports as JSON blobs with a TTL.
// Reads are best effort: any Redis failure degrades to a rebuild, never an
// error surfaced to the caller.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache returns a ReportCache with the given TTL.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into target.
func (c *ReportCache) Get(ctx context.Context, key string, target any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, reportPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return ErrMiss
	}
	if err := json.Unmarshal(data, target); err != nil {
		return ErrMiss
	}
	return nil
}

// Set stores value under key for the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportPrefix+key, data, c.ttl).Err()
}

// InvalidateAll drops every cached report. Called after any invoice, payment
// or THN mutation; losing the whole prefix is cheaper than tracking which
// customers a mutation touches.
func (c *ReportCache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, reportPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
