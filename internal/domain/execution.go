package domain

import "time"

// Side is the direction of a raw execution.
type Side string

// Execution sides.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Execution represents a single raw buy/sell fill from the trader's log.
// Immutable once parsed by the normalizer; consumed only by the matcher.
type Execution struct {
	Ticker    string
	Timestamp time.Time // UTC
	Side      Side
	Price     float64
	Quantity  float64

	// Row preserves original input order so that same-timestamp executions
	// match in the order they were recorded, never reordered by price.
	Row int
}
