package memory

import (
	"context"
	"sync"

	"github.com/polysentinel/sentinel/internal/domain"
)

// MarketCache is a map-backed domain.MarketInfoCache. Entries never expire;
// metadata for a fixed token is treated as immutable once fetched.
type MarketCache struct {
	mu      sync.RWMutex
	markets map[string]domain.MarketInfo
}

// NewMarketCache creates an empty MarketCache.
func NewMarketCache() *MarketCache {
	return &MarketCache{
		markets: make(map[string]domain.MarketInfo),
	}
}

// Get returns the cached metadata for a token ID, or domain.ErrNotFound.
func (c *MarketCache) Get(_ context.Context, tokenID string) (domain.MarketInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.markets[tokenID]
	if !ok {
		return domain.MarketInfo{}, domain.ErrNotFound
	}
	return info, nil
}

// Set stores metadata keyed by its token ID.
func (c *MarketCache) Set(_ context.Context, info domain.MarketInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markets[info.TokenID] = info
	return nil
}
