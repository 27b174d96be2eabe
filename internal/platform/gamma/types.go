package gamma

import (
	"encoding/json"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// The outcome labels, prices, and token IDs arrive as three JSON-encoded
// string arrays correlated by index.
type APIMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	ConditionID   string   `json:"conditionId"`
	Slug          string   `json:"slug"`
	Image         string   `json:"image"`
	Active        flexBool `json:"active"`
	Closed        bool     `json:"closed"`
	Outcomes      string   `json:"outcomes"`      // e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string   `json:"outcomePrices"` // e.g. "[\"0.5\",\"0.5\"]"
	ClobTokenIDs  string   `json:"clobTokenIds"`  // e.g. "[\"123\",\"456\"]"
}

// TokenIDs returns the decoded clobTokenIds array, or nil when the field is
// missing or malformed.
func (m *APIMarket) TokenIDs() []string {
	return decodeStringArray(m.ClobTokenIDs)
}

// OutcomeLabels returns the decoded outcomes array.
func (m *APIMarket) OutcomeLabels() []string {
	return decodeStringArray(m.Outcomes)
}

// Prices returns the decoded outcomePrices array.
func (m *APIMarket) Prices() []string {
	return decodeStringArray(m.OutcomePrices)
}

// decodeStringArray parses a Gamma-style JSON-encoded string array field.
func decodeStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
