package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polysentinel/sentinel/internal/domain"
)

func TestFreshnessCacheCaseInsensitive(t *testing.T) {
	c := NewFreshnessCache()
	ctx := context.Background()

	rec := domain.FreshnessRecord{Fresh: true, CheckedAt: time.Now()}
	if err := c.Set(ctx, "0xAbCd", rec); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "0xABCD")
	if err != nil {
		t.Fatalf("mixed-case lookup must hit: %v", err)
	}
	if !got.Fresh {
		t.Error("unexpected verdict")
	}
}

func TestFreshnessCacheMiss(t *testing.T) {
	c := NewFreshnessCache()
	if _, err := c.Get(context.Background(), "0xmissing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarketCacheRoundTrip(t *testing.T) {
	c := NewMarketCache()
	ctx := context.Background()

	info := domain.MarketInfo{TokenID: "111", Question: "Will it rain tomorrow?", Outcome: "Yes"}
	if err := c.Set(ctx, info); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "111")
	if err != nil {
		t.Fatal(err)
	}
	if got.Question != info.Question || got.Outcome != info.Outcome {
		t.Errorf("unexpected entry %+v", got)
	}

	if _, err := c.Get(ctx, "222"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1, err := b.Subscribe(ctx, "ch:alert")
	if err != nil {
		t.Fatal(err)
	}
	ch2, err := b.Subscribe(ctx, "ch:alert")
	if err != nil {
		t.Fatal(err)
	}
	other, err := b.Subscribe(ctx, "ch:stats")
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Publish(ctx, "ch:alert", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	for _, ch := range []<-chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			if string(msg) != "payload" {
				t.Errorf("unexpected payload %q", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}

	select {
	case msg := <-other:
		t.Errorf("other channel must not receive, got %q", msg)
	default:
	}
}

func TestBusSubscriptionClosesOnCancel(t *testing.T) {
	b := NewBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "ch:alert")
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}

	// Publishing after unsubscribe must not panic or block.
	if err := b.Publish(context.Background(), "ch:alert", []byte("late")); err != nil {
		t.Fatal(err)
	}
}
