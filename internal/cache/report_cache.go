package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
)

const reportKeyPrefix = "inventory:report"

// ReportCache stores computed reports keyed by report name and dataset fingerprint.
type ReportCache interface {
	// Get decodes a cached report into dest and reports whether it was found.
	Get(ctx context.Context, report, fingerprint string, dest any) (bool, error)
	Set(ctx context.Context, report, fingerprint string, value any) error
	// InvalidateAll drops every cached report and returns how many keys were removed.
	InvalidateAll(ctx context.Context) (int, error)
	Close() error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache builds the report cache and the export locker from one redis
// client. Both are no-ops when the cache is disabled.
func NewReportCache(cfg config.CacheConfig) (ReportCache, Locker, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, NewNoopLocker(), nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	return NewRedisReportCache(client, reportTTL(cfg)), NewRedisLocker(client), nil
}

// NewRedisReportCache wraps an existing client.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisReportCache{client: client, ttl: ttl}
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, report, fingerprint string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, reportKey(report, fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", report, err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, report, fingerprint string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", report, err)
	}

	if err := c.client.Set(ctx, reportKey(report, fingerprint), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) (int, error) {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, scanBatchSize)
}

func (c *redisReportCache) Close() error {
	return c.client.Close()
}

func (n *noopReportCache) Get(ctx context.Context, report, fingerprint string, dest any) (bool, error) {
	return false, nil
}

func (n *noopReportCache) Set(ctx context.Context, report, fingerprint string, value any) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) (int, error) {
	return 0, nil
}

func (n *noopReportCache) Close() error {
	return nil
}

func reportKey(report, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, report, fingerprint)
}
