// Package ledger holds the time-windowed collection of fresh-wallet bets per
// market outcome. Only fresh bets are ever inserted; freshness filtering
// happens upstream in the trade processor.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polysentinel/sentinel/internal/domain"
)

// Ledger maps outcome token IDs to their live bets in arrival order. It is
// owned by the scan loop and must only be mutated from that single flow;
// readers outside the loop go through the detector's alert snapshots.
type Ledger struct {
	window   time.Duration
	outcomes map[string][]domain.Bet
}

// New creates an empty Ledger with the given rolling window.
func New(window time.Duration) *Ledger {
	return &Ledger{
		window:   window,
		outcomes: make(map[string][]domain.Bet),
	}
}

// Record inserts or accumulates a bet. When the wallet already has a live
// entry for the outcome, its amount accumulates and its first-seen timestamp
// is preserved; otherwise a new entry is appended in arrival order. It
// returns true when this is the wallet's first live entry for the outcome,
// which is the caller's cue to re-run cluster detection.
func (l *Ledger) Record(outcomeID, wallet, txHash string, amount decimal.Decimal, now time.Time) bool {
	l.purge(outcomeID, now)

	bets := l.outcomes[outcomeID]
	for i := range bets {
		if bets[i].Wallet == wallet {
			bets[i].Amount = bets[i].Amount.Add(amount)
			return false
		}
	}

	l.outcomes[outcomeID] = append(bets, domain.Bet{
		Wallet:    wallet,
		TxHash:    txHash,
		Amount:    amount,
		Timestamp: now,
	})
	return true
}

// FreshBets returns the live entries for an outcome in arrival order, after
// purging anything that has aged out of the window.
func (l *Ledger) FreshBets(outcomeID string, now time.Time) []domain.Bet {
	l.purge(outcomeID, now)

	bets := l.outcomes[outcomeID]
	out := make([]domain.Bet, len(bets))
	copy(out, bets)
	return out
}

// SweepExpired removes entries older than the window across all outcomes and
// deletes outcome buckets left empty. It returns the number of entries
// removed. Sweeping twice with no new bets is a no-op the second time.
func (l *Ledger) SweepExpired(now time.Time) int {
	removed := 0
	for outcomeID, bets := range l.outcomes {
		kept := l.live(bets, now)
		removed += len(bets) - len(kept)
		if len(kept) == 0 {
			delete(l.outcomes, outcomeID)
		} else {
			l.outcomes[outcomeID] = kept
		}
	}
	return removed
}

// Outcomes returns the number of outcome buckets currently tracked.
func (l *Ledger) Outcomes() int {
	return len(l.outcomes)
}

// purge drops expired entries from a single outcome bucket.
func (l *Ledger) purge(outcomeID string, now time.Time) {
	bets, ok := l.outcomes[outcomeID]
	if !ok {
		return
	}
	kept := l.live(bets, now)
	if len(kept) == 0 {
		delete(l.outcomes, outcomeID)
	} else {
		l.outcomes[outcomeID] = kept
	}
}

// live filters bets to those still inside the window. An entry at exactly
// now-window is expired.
func (l *Ledger) live(bets []domain.Bet, now time.Time) []domain.Bet {
	cutoff := now.Add(-l.window)
	kept := bets[:0:0]
	for _, b := range bets {
		if b.Timestamp.After(cutoff) {
			kept = append(kept, b)
		}
	}
	return kept
}
