// Package domain holds the core types and interfaces of the fresh-wallet
// cluster sentinel: trade events, bets, alerts, and the cache and bus
// contracts implemented by internal/cache.
package domain

import (
	"context"
	"time"
)

// FreshnessRecord is a cached wallet-freshness verdict. Records older than
// the classifier's TTL are stale and must be re-derived, never trusted.
type FreshnessRecord struct {
	Fresh     bool
	CheckedAt time.Time
}

// FreshnessCache stores freshness verdicts keyed by lowercased wallet
// address. Get returns ErrNotFound when no record exists.
type FreshnessCache interface {
	Get(ctx context.Context, wallet string) (FreshnessRecord, error)
	Set(ctx context.Context, wallet string, rec FreshnessRecord) error
}

// MarketInfoCache stores resolved market metadata keyed by outcome token ID.
// Entries never expire; market metadata for a fixed token is treated as
// immutable. Get returns ErrNotFound on a miss.
type MarketInfoCache interface {
	Get(ctx context.Context, tokenID string) (MarketInfo, error)
	Set(ctx context.Context, info MarketInfo) error
}

// SignalBus provides pub/sub messaging between the detection pipeline and
// the dashboard WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
