// Package memory implements the domain cache interfaces with in-process
// maps. This is the default backend: the sentinel's state is rebuilt from a
// bounded backfill on restart, so nothing here needs to survive the process.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/polysentinel/sentinel/internal/domain"
)

// FreshnessCache is a map-backed domain.FreshnessCache. Records are
// overwritten on refresh and never evicted; staleness is judged by the
// classifier against the record's CheckedAt.
type FreshnessCache struct {
	mu      sync.RWMutex
	records map[string]domain.FreshnessRecord
}

// NewFreshnessCache creates an empty FreshnessCache.
func NewFreshnessCache() *FreshnessCache {
	return &FreshnessCache{
		records: make(map[string]domain.FreshnessRecord),
	}
}

// Get returns the cached record for a wallet, or domain.ErrNotFound.
func (c *FreshnessCache) Get(_ context.Context, wallet string) (domain.FreshnessRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[strings.ToLower(wallet)]
	if !ok {
		return domain.FreshnessRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Set stores or overwrites the record for a wallet.
func (c *FreshnessCache) Set(_ context.Context, wallet string, rec domain.FreshnessRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[strings.ToLower(wallet)] = rec
	return nil
}
