package domain

import "time"

// SentinelScore marks a fomo/panic score that could not be computed because
// market data for the entry or exit day was missing. It is deliberately
// outside the valid [0,1] range so absence of data is never mistaken for a
// real score of 0.
const SentinelScore = -1.0

// Market regime labels for the session a trade was entered in.
const (
	RegimeBull     = "BULL"
	RegimeBear     = "BEAR"
	RegimeSideways = "SIDEWAYS"
	RegimeUnknown  = "UNKNOWN"
)

// MatchedTrade is one closed round-trip produced by FIFO matching (or taken
// verbatim from pre-paired input). Invariants: Quantity > 0 and
// EntryTime <= ExitTime.
type MatchedTrade struct {
	TradeID    string // deterministic hash
	Ticker     string
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Quantity   float64
}

// EnrichedTrade is a MatchedTrade joined against day-level market context.
// Created once per matched trade and immutable thereafter; IsRevenge is the
// one field computed in a second pass over the whole set because it depends
// on sibling trades.
type EnrichedTrade struct {
	MatchedTrade

	PnL          float64
	ReturnPct    float64
	DurationDays float64

	// FomoScore and PanicScore are SentinelScore when the entry or exit day
	// has no market data.
	FomoScore  float64
	PanicScore float64

	// FomoScoreBase and PanicScoreBase are the pure range-position scores
	// before volume weighting, kept for score decomposition. Sentinel under
	// the same conditions as the weighted scores.
	FomoScoreBase  float64
	PanicScoreBase float64

	MAE        float64 // worst excursion vs entry over the holding window
	MFE        float64 // best excursion vs entry over the holding window
	Efficiency float64 // realized gain / max favorable move, >= 0
	Regret     float64 // profit left on the table after exit, >= 0

	IsRevenge    bool
	MarketRegime string

	// Raw day ranges kept for pattern extraction and caller display.
	EntryDayHigh float64
	EntryDayLow  float64
	ExitDayHigh  float64
	ExitDayLow   float64

	// Volume weights relative to the 20-session average (1.0 when volume
	// history is unavailable).
	VolumeWeightEntry float64
	VolumeWeightExit  float64

	// Decomposition explains how the contextual weighting shaped the
	// trade's scores. Only attached to flagged trades; nil otherwise.
	Decomposition *ScoreDecomposition
}

// ScoreDecomposition breaks a flagged trade's contextual score into its
// factors: the pure psychology score, the volume spike weight, and the
// market regime weight.
type ScoreDecomposition struct {
	BaseScore       float64 // 0-100, psychology penalties only
	VolumeWeight    float64 // worse of the entry and exit weights
	RegimeWeight    float64 // 0.8, 1.0 or 1.5 depending on regime fit
	ContextualScore float64 // base x volume x regime, clamped to [0,150]
}

// HasScores reports whether market context was available for both the entry
// and exit days of the trade.
func (t *EnrichedTrade) HasScores() bool {
	return t.FomoScore != SentinelScore && t.PanicScore != SentinelScore
}

// IsWinner reports whether the trade closed with a positive PnL. Breakeven
// trades count as losers, matching the aggregation rules.
func (t *EnrichedTrade) IsWinner() bool {
	return t.PnL > 0
}
