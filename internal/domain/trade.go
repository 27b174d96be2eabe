package domain

// TradeEvent is a decoded OrderFilled log from the CTF exchange contract.
// Amounts are in the chain's fixed-point integer representation (6-decimal
// USDC units on the collateral side).
type TradeEvent struct {
	Maker             string
	Taker             string
	MakerAssetID      string
	TakerAssetID      string
	MakerAmountFilled int64
	TakerAmountFilled int64
	TxHash            string
	BlockNumber       uint64
}

// ZeroAddress is the burn address; fills attributed to it carry no real
// participant and are skipped by the trade processor.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// CollateralAssetID identifies the USDC side of a fill. A participant whose
// asset ID equals this value is paying collateral rather than holding an
// outcome token.
const CollateralAssetID = "0"
