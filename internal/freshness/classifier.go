// Package freshness classifies wallets as "fresh": addresses whose total
// transaction count is low enough that they were plausibly created just to
// place the bet being observed.
package freshness

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/polysentinel/sentinel/internal/domain"
)

// TxCounter is the chain query a verdict is derived from.
type TxCounter interface {
	// TransactionCount returns the total number of transactions ever sent
	// by the wallet.
	TransactionCount(ctx context.Context, wallet string) (uint64, error)
}

// Classifier decides whether a wallet is fresh, with a write-through
// TTL-bounded cache so repeat wallets do not hammer the RPC endpoint.
type Classifier struct {
	counter    TxCounter
	cache      domain.FreshnessCache
	ttl        time.Duration
	maxTxCount uint64
	logger     *slog.Logger

	now func() time.Time
}

// NewClassifier creates a Classifier. A wallet is fresh iff its transaction
// count is at most maxTxCount; cached verdicts are trusted for ttl.
func NewClassifier(counter TxCounter, cache domain.FreshnessCache, ttl time.Duration, maxTxCount uint64, logger *slog.Logger) *Classifier {
	return &Classifier{
		counter:    counter,
		cache:      cache,
		ttl:        ttl,
		maxTxCount: maxTxCount,
		logger:     logger.With(slog.String("component", "freshness")),
		now:        time.Now,
	}
}

// IsFresh returns the freshness verdict for a wallet. It never fails: any
// cache or RPC error yields "not fresh", since a false negative only drops
// one bet from the ledger while an error would stall the whole pipeline.
func (c *Classifier) IsFresh(ctx context.Context, wallet string) bool {
	wallet = strings.ToLower(wallet)
	now := c.now()

	if rec, err := c.cache.Get(ctx, wallet); err == nil {
		if now.Sub(rec.CheckedAt) < c.ttl {
			return rec.Fresh
		}
	}

	count, err := c.counter.TransactionCount(ctx, wallet)
	if err != nil {
		c.logger.Warn("freshness lookup failed, treating wallet as not fresh",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		return false
	}

	// maxTxCount allows for nonce-increment timing around the very
	// transaction being observed.
	fresh := count <= c.maxTxCount

	rec := domain.FreshnessRecord{Fresh: fresh, CheckedAt: now}
	if err := c.cache.Set(ctx, wallet, rec); err != nil {
		c.logger.Warn("freshness cache write failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
	}

	return fresh
}
