// Package metadata resolves human-readable market and outcome information
// for outcome token IDs via the Gamma API, and classifies markets that the
// content policy excludes from alerting.
package metadata

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/platform/gamma"
)

// MarketFetcher is the Gamma query the resolver depends on.
type MarketFetcher interface {
	GetMarketByToken(ctx context.Context, tokenID string) (gamma.APIMarket, error)
}

// Resolver is a cache-first market metadata lookup. Resolved entries never
// expire.
type Resolver struct {
	fetcher MarketFetcher
	cache   domain.MarketInfoCache
	logger  *slog.Logger
}

// NewResolver creates a Resolver backed by the given fetcher and cache.
func NewResolver(fetcher MarketFetcher, cache domain.MarketInfoCache, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger.With(slog.String("component", "metadata")),
	}
}

// Resolve returns the metadata for an outcome token, or nil when it is
// unavailable (endpoint unreachable or no matching market). Callers must
// treat nil as "metadata unavailable", not as an error to propagate.
func (r *Resolver) Resolve(ctx context.Context, tokenID string) *domain.MarketInfo {
	if info, err := r.cache.Get(ctx, tokenID); err == nil {
		return &info
	}

	market, err := r.fetcher.GetMarketByToken(ctx, tokenID)
	if err != nil {
		r.logger.Warn("market metadata unavailable",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	info := toMarketInfo(tokenID, market)

	if err := r.cache.Set(ctx, info); err != nil {
		r.logger.Warn("market cache write failed",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
	}

	return &info
}

// toMarketInfo maps a Gamma market onto the outcome identified by tokenID.
// The outcomes, prices, and token IDs arrive as parallel arrays, so the
// token's position must be located by value. When the token is not found the
// outcome label defaults to Unknown and the price stays nil, but the market
// fields remain populated and usable.
func toMarketInfo(tokenID string, market gamma.APIMarket) domain.MarketInfo {
	info := domain.MarketInfo{
		TokenID:     tokenID,
		Question:    market.Question,
		Outcome:     domain.UnknownOutcome,
		Slug:        market.Slug,
		ConditionID: market.ConditionID,
		Image:       market.Image,
	}

	tokens := market.TokenIDs()
	idx := -1
	for i, id := range tokens {
		if id == tokenID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return info
	}

	if labels := market.OutcomeLabels(); idx < len(labels) {
		info.Outcome = labels[idx]
	}
	if prices := market.Prices(); idx < len(prices) {
		if p, err := strconv.ParseFloat(prices[idx], 64); err == nil {
			info.Price = &p
		}
	}

	return info
}
