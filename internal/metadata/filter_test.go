package metadata

import (
	"testing"

	"github.com/polysentinel/sentinel/internal/domain"
)

func TestShouldFilter(t *testing.T) {
	cases := []struct {
		question string
		want     bool
	}{
		// Short-horizon crypto price markets are excluded.
		{"Bitcoin up or down in the next 5 minutes?", true},
		{"Bitcoin Up or Down - 1 minute", true},
		{"Will ETH be higher or lower in 15 minutes?", true},
		{"BTC above or below $100k?", true},
		{"Solana price at 3pm ET?", true},
		{"Will Bitcoin go up today?", true},
		{"Dogecoin higher by 11:30 am?", true},
		{"XRP up or down?", true},

		// Legitimate markets stay alertable.
		{"Will it rain tomorrow?", false},
		{"Will the incumbent win the election?", false},
		{"Will Bitcoin reach $200k by end of year?", false},
		{"Will Ethereum complete the next upgrade in Q3?", false},
		{"Will the minutes of the Fed meeting mention inflation?", false},

		// Empty question: the unknown-market policy applies elsewhere.
		{"", false},
	}

	for _, tc := range cases {
		got := ShouldFilter(domain.MarketInfo{Question: tc.question})
		if got != tc.want {
			t.Errorf("ShouldFilter(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}
