package domain

// UnknownOutcome is the placeholder label used when a token ID cannot be
// located in the market's outcome array, or when metadata is unavailable.
const UnknownOutcome = "Unknown"

// MarketInfo is the human-readable metadata for one outcome token of a
// market, resolved from the Gamma API. Once fetched it is treated as
// immutable and cached indefinitely.
type MarketInfo struct {
	TokenID     string   `json:"tokenId"`
	Question    string   `json:"question"`
	Outcome     string   `json:"outcome"`
	Price       *float64 `json:"price"` // probability 0..1, nil when unavailable
	Slug        string   `json:"slug"`
	ConditionID string   `json:"conditionId"`
	Image       string   `json:"image,omitempty"`
}

// URL returns the public market page for this outcome, or an empty string
// when no slug is known.
func (m MarketInfo) URL() string {
	if m.Slug == "" {
		return ""
	}
	return "https://polymarket.com/event/" + m.Slug
}

// Unknown reports whether no question text could be resolved for the market.
func (m MarketInfo) Unknown() bool {
	return m.Question == ""
}
