package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/polysentinel/sentinel/internal/domain"
)

// MarketCache implements domain.MarketInfoCache using Redis strings with
// JSON-serialized metadata.
//
// Key schema:
//
//	market:token:{tokenID} - JSON-encoded domain.MarketInfo
//
// Entries carry no TTL: market metadata for a fixed token is treated as
// immutable once resolved.
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

func marketTokenKey(tok string) string { return "market:token:" + tok }

// Get retrieves metadata by outcome token ID.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, tokenID string) (domain.MarketInfo, error) {
	data, err := mc.rdb.Get(ctx, marketTokenKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketInfo{}, domain.ErrNotFound
		}
		return domain.MarketInfo{}, fmt.Errorf("redis: get market %s: %w", tokenID, err)
	}

	var info domain.MarketInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return domain.MarketInfo{}, fmt.Errorf("redis: unmarshal market %s: %w", tokenID, err)
	}
	return info, nil
}

// Set stores metadata keyed by its token ID, without expiry.
func (mc *MarketCache) Set(ctx context.Context, info domain.MarketInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", info.TokenID, err)
	}

	if err := mc.rdb.Set(ctx, marketTokenKey(info.TokenID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set market %s: %w", info.TokenID, err)
	}
	return nil
}
