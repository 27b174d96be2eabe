package freshness

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/polysentinel/sentinel/internal/cache/memory"
)

// fakeCounter serves canned transaction counts and records call volume.
type fakeCounter struct {
	counts map[string]uint64
	err    error
	calls  int
}

func (f *fakeCounter) TransactionCount(_ context.Context, wallet string) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[wallet], nil
}

func newTestClassifier(counter *fakeCounter, ttl time.Duration) *Classifier {
	return NewClassifier(counter, memory.NewFreshnessCache(), ttl, 2, slog.New(slog.DiscardHandler))
}

func TestFreshnessThreshold(t *testing.T) {
	counter := &fakeCounter{counts: map[string]uint64{
		"0xzero": 0,
		"0xtwo":  2,
		"0xmany": 3,
	}}
	c := newTestClassifier(counter, time.Hour)
	ctx := context.Background()

	if !c.IsFresh(ctx, "0xzero") {
		t.Error("wallet with 0 transactions must be fresh")
	}
	if !c.IsFresh(ctx, "0xtwo") {
		t.Error("wallet at exactly the maximum count must be fresh")
	}
	if c.IsFresh(ctx, "0xmany") {
		t.Error("wallet above the maximum count must not be fresh")
	}
}

func TestVerdictCachedWithinTTL(t *testing.T) {
	counter := &fakeCounter{counts: map[string]uint64{"0xabc": 1}}
	c := newTestClassifier(counter, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !c.IsFresh(ctx, "0xABC") { // case must not matter
			t.Fatal("expected fresh verdict")
		}
	}
	if counter.calls != 1 {
		t.Errorf("expected a single RPC lookup for repeated checks, got %d", counter.calls)
	}
}

func TestVerdictRederivedAfterTTL(t *testing.T) {
	counter := &fakeCounter{counts: map[string]uint64{"0xabc": 1}}
	c := newTestClassifier(counter, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.IsFresh(ctx, "0xabc")

	// The wallet has aged out of freshness by the time the record expires.
	counter.counts["0xabc"] = 10
	now = now.Add(time.Hour) // exactly TTL: record is stale

	if c.IsFresh(ctx, "0xabc") {
		t.Error("stale record must be re-derived, not trusted")
	}
	if counter.calls != 2 {
		t.Errorf("expected 2 RPC lookups, got %d", counter.calls)
	}
}

func TestLookupErrorMeansNotFresh(t *testing.T) {
	counter := &fakeCounter{err: errors.New("rpc unavailable")}
	c := newTestClassifier(counter, time.Hour)

	if c.IsFresh(context.Background(), "0xabc") {
		t.Error("an RPC failure must yield a not-fresh verdict, not an error")
	}
}

func TestErrorVerdictNotCached(t *testing.T) {
	counter := &fakeCounter{err: errors.New("rpc unavailable")}
	c := newTestClassifier(counter, time.Hour)
	ctx := context.Background()

	c.IsFresh(ctx, "0xabc")

	// Once the endpoint recovers, the wallet is classified properly.
	counter.err = nil
	counter.counts = map[string]uint64{"0xabc": 0}
	if !c.IsFresh(ctx, "0xabc") {
		t.Error("failed lookups must not poison the cache")
	}
}
