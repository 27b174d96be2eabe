package pipeline

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polysentinel/sentinel/internal/detector"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/ledger"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// allFresh classifies every wallet as fresh and records the wallets asked
// about.
type allFresh struct {
	asked []string
}

func (f *allFresh) IsFresh(_ context.Context, wallet string) bool {
	f.asked = append(f.asked, wallet)
	return true
}

// freshSet classifies only listed wallets as fresh.
type freshSet map[string]bool

func (f freshSet) IsFresh(_ context.Context, wallet string) bool { return f[wallet] }

// nilResolver resolves nothing.
type nilResolver struct{}

func (nilResolver) Resolve(context.Context, string) *domain.MarketInfo { return nil }

// nopSink discards all events.
type nopSink struct{}

func (nopSink) NewAlert(context.Context, domain.ClusterAlert) error    { return nil }
func (nopSink) AlertUpdate(context.Context, domain.ClusterAlert) error { return nil }
func (nopSink) Stats(context.Context, domain.PipelineStats) error      { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestProcessor(classifier FreshnessClassifier, minBet decimal.Decimal) (*Processor, *ledger.Ledger) {
	l := ledger.New(24 * time.Hour)
	d := detector.New(l, nilResolver{}, func(domain.MarketInfo) bool { return false }, nopSink{},
		detector.Config{Threshold: 1000, MaxAlerts: 50, AlertOnUnknownMarket: true}, testLogger())
	return NewProcessor(classifier, l, d, minBet, testLogger()), l
}

// buyEvent is a fill where the maker pays USDC for the taker's outcome
// token.
func buyEvent(maker, taker, tokenID string, usdcUnits, tokenUnits int64) domain.TradeEvent {
	return domain.TradeEvent{
		Maker:             maker,
		Taker:             taker,
		MakerAssetID:      domain.CollateralAssetID,
		TakerAssetID:      tokenID,
		MakerAmountFilled: usdcUnits,
		TakerAmountFilled: tokenUnits,
		TxHash:            "0xtx1",
		BlockNumber:       100,
	}
}

func TestCollateralSideMapsToCounterpartyToken(t *testing.T) {
	classifier := &allFresh{}
	p, l := newTestProcessor(classifier, decimal.Zero)

	// Maker spends 150 USDC (6 decimals) on the taker's token.
	p.ProcessTrade(context.Background(), buyEvent("0xmaker", "0xtaker", "token-1", 150_000_000, 300_000_000), baseTime)

	bets := l.FreshBets("token-1", baseTime)
	if len(bets) != 2 {
		t.Fatalf("both sides bet on token-1, expected 2 entries, got %d", len(bets))
	}
	byWallet := map[string]domain.Bet{}
	for _, b := range bets {
		byWallet[b.Wallet] = b
	}
	if got := byWallet["0xmaker"].Amount; !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("maker's bet should be its collateral spend 150, got %s", got)
	}
	if got := byWallet["0xtaker"].Amount; !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("taker's bet should be its own filled amount 300, got %s", got)
	}
	if p.TradesSeen() != 1 {
		t.Errorf("expected 1 trade seen, got %d", p.TradesSeen())
	}
	if p.FreshWallets() != 2 {
		t.Errorf("expected 2 fresh wallet entries, got %d", p.FreshWallets())
	}
}

func TestZeroAddressSkipped(t *testing.T) {
	classifier := &allFresh{}
	p, l := newTestProcessor(classifier, decimal.Zero)

	p.ProcessTrade(context.Background(), buyEvent(domain.ZeroAddress, "0xtaker", "token-1", 1_000_000, 1_000_000), baseTime)

	bets := l.FreshBets("token-1", baseTime)
	if len(bets) != 1 || bets[0].Wallet != "0xtaker" {
		t.Errorf("zero-address participant must be skipped, got %+v", bets)
	}
	for _, w := range classifier.asked {
		if w == domain.ZeroAddress {
			t.Error("zero address must not reach the classifier")
		}
	}
}

func TestMinBetFilterAppliedBeforeClassification(t *testing.T) {
	classifier := &allFresh{}
	p, l := newTestProcessor(classifier, decimal.NewFromInt(100))

	// Maker spends 50 USDC, below the 100 minimum; taker's token amount 200
	// clears it.
	p.ProcessTrade(context.Background(), buyEvent("0xmaker", "0xtaker", "token-1", 50_000_000, 200_000_000), baseTime)

	bets := l.FreshBets("token-1", baseTime)
	if len(bets) != 1 || bets[0].Wallet != "0xtaker" {
		t.Fatalf("sub-minimum bet must be dropped, got %+v", bets)
	}
	if len(classifier.asked) != 1 || classifier.asked[0] != "0xtaker" {
		t.Errorf("sub-minimum participants must be filtered before classification, classifier saw %v", classifier.asked)
	}
}

func TestNonFreshWalletNotRecorded(t *testing.T) {
	p, l := newTestProcessor(freshSet{"0xtaker": true}, decimal.Zero)

	p.ProcessTrade(context.Background(), buyEvent("0xmaker", "0xtaker", "token-1", 1_000_000, 1_000_000), baseTime)

	bets := l.FreshBets("token-1", baseTime)
	if len(bets) != 1 || bets[0].Wallet != "0xtaker" {
		t.Errorf("only fresh wallets may enter the ledger, got %+v", bets)
	}
	if p.FreshWallets() != 1 {
		t.Errorf("expected 1 fresh wallet, got %d", p.FreshWallets())
	}
}

func TestRepeatBetAccumulatesWithoutRecount(t *testing.T) {
	classifier := &allFresh{}
	p, l := newTestProcessor(classifier, decimal.Zero)
	ctx := context.Background()

	p.ProcessTrade(ctx, buyEvent("0xmaker", "0xtaker", "token-1", 100_000_000, 100_000_000), baseTime)
	p.ProcessTrade(ctx, buyEvent("0xmaker", "0xtaker", "token-1", 100_000_000, 100_000_000), baseTime.Add(time.Minute))

	if p.FreshWallets() != 2 {
		t.Errorf("repeat bets must not increment the fresh-wallet count, got %d", p.FreshWallets())
	}
	bets := l.FreshBets("token-1", baseTime.Add(time.Minute))
	if len(bets) != 2 {
		t.Fatalf("expected 2 distinct wallet entries, got %d", len(bets))
	}
	for _, b := range bets {
		if !b.Amount.Equal(decimal.NewFromInt(200)) && !b.Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("unexpected accumulated amount %s for %s", b.Amount, b.Wallet)
		}
	}
}

func TestTokenForTokenFillKeepsBothSides(t *testing.T) {
	classifier := &allFresh{}
	p, l := newTestProcessor(classifier, decimal.Zero)

	// Neither side pays collateral: each keeps its own token and amount.
	ev := domain.TradeEvent{
		Maker:             "0xmaker",
		Taker:             "0xtaker",
		MakerAssetID:      "token-a",
		TakerAssetID:      "token-b",
		MakerAmountFilled: 10_000_000,
		TakerAmountFilled: 20_000_000,
		TxHash:            "0xtx2",
	}
	p.ProcessTrade(context.Background(), ev, baseTime)

	a := l.FreshBets("token-a", baseTime)
	b := l.FreshBets("token-b", baseTime)
	if len(a) != 1 || a[0].Wallet != "0xmaker" {
		t.Errorf("maker should bet on its own token, got %+v", a)
	}
	if len(b) != 1 || b[0].Wallet != "0xtaker" {
		t.Errorf("taker should bet on its own token, got %+v", b)
	}
}
