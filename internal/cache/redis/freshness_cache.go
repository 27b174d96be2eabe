package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polysentinel/sentinel/internal/domain"
)

// FreshnessCache implements domain.FreshnessCache on Redis so several
// sentinel instances can share freshness verdicts. Keys expire at the
// classifier TTL; the classifier additionally checks CheckedAt, so a shorter
// Redis TTL only causes extra re-derivation, never a stale verdict.
type FreshnessCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFreshnessCache creates a FreshnessCache backed by the given Client.
func NewFreshnessCache(c *Client, ttl time.Duration) *FreshnessCache {
	return &FreshnessCache{rdb: c.Underlying(), ttl: ttl}
}

func freshnessKey(wallet string) string {
	return "fresh:" + strings.ToLower(wallet)
}

// Get returns the cached record for a wallet.
// It returns domain.ErrNotFound when the key does not exist.
func (fc *FreshnessCache) Get(ctx context.Context, wallet string) (domain.FreshnessRecord, error) {
	data, err := fc.rdb.Get(ctx, freshnessKey(wallet)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.FreshnessRecord{}, domain.ErrNotFound
		}
		return domain.FreshnessRecord{}, fmt.Errorf("redis: get freshness %s: %w", wallet, err)
	}

	var rec domain.FreshnessRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.FreshnessRecord{}, fmt.Errorf("redis: unmarshal freshness %s: %w", wallet, err)
	}
	return rec, nil
}

// Set stores a record with the classifier TTL.
func (fc *FreshnessCache) Set(ctx context.Context, wallet string, rec domain.FreshnessRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal freshness %s: %w", wallet, err)
	}

	if err := fc.rdb.Set(ctx, freshnessKey(wallet), data, fc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set freshness %s: %w", wallet, err)
	}
	return nil
}
