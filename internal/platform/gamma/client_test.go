package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/polysentinel/sentinel/internal/domain"
)

const marketJSON = `[{
	"id": "512345",
	"question": "Will the incumbent win the election?",
	"conditionId": "0xcond",
	"slug": "incumbent-win-election",
	"active": "true",
	"closed": false,
	"outcomes": "[\"Yes\",\"No\"]",
	"outcomePrices": "[\"0.62\",\"0.38\"]",
	"clobTokenIds": "[\"111\",\"222\"]"
}]`

func TestGetMarketByToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("clob_token_ids"); got != "111" {
			t.Errorf("unexpected token query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(marketJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	market, err := c.GetMarketByToken(context.Background(), "111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if market.Question != "Will the incumbent win the election?" {
		t.Errorf("unexpected question %q", market.Question)
	}
	if !bool(market.Active) {
		t.Error("string-encoded active flag should decode to true")
	}
	if ids := market.TokenIDs(); len(ids) != 2 || ids[0] != "111" || ids[1] != "222" {
		t.Errorf("unexpected token IDs %v", ids)
	}
	if labels := market.OutcomeLabels(); len(labels) != 2 || labels[0] != "Yes" {
		t.Errorf("unexpected outcome labels %v", labels)
	}
	if prices := market.Prices(); len(prices) != 2 || prices[1] != "0.38" {
		t.Errorf("unexpected prices %v", prices)
	}
}

func TestGetMarketByTokenNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetMarketByToken(context.Background(), "999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty result, got %v", err)
	}
}

func TestGetMarketByTokenUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.GetMarketByToken(context.Background(), "111"); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestMalformedArrayFieldsDecodeToNil(t *testing.T) {
	m := APIMarket{Outcomes: "not json", ClobTokenIDs: "", OutcomePrices: `["0.5"]`}
	if m.OutcomeLabels() != nil {
		t.Error("malformed outcomes should decode to nil")
	}
	if m.TokenIDs() != nil {
		t.Error("empty clobTokenIds should decode to nil")
	}
	if got := m.Prices(); len(got) != 1 || got[0] != "0.5" {
		t.Errorf("unexpected prices %v", got)
	}
}
