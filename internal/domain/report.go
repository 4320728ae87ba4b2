package domain

import "time"

// Report is the complete output of one analysis run. Callers receive it as
// an immutable snapshot; nothing in it is shared with engine internals.
type Report struct {
	GeneratedAt time.Time

	Trades      []EnrichedTrade
	Metrics     BehavioralMetrics
	IsLowSample bool

	PersonalBaseline *PersonalBaseline
	BiasLossMapping  *BiasLossMapping
	BiasPriority     []BiasPriority
	BehaviorShift    []BehaviorShift

	EquityCurve  []EquityCurvePoint
	DeepPatterns []DeepPattern
	Playbook     *PersonalPlaybook

	// DroppedRows counts malformed input rows the normalizer discarded.
	DroppedRows int
	Warnings    []string
}

// EquityCurvePoint is one step of the cumulative PnL curve, in entry-time
// order. Scores are nil when the underlying trade carries sentinels.
type EquityCurvePoint struct {
	Date          time.Time
	CumulativePnL float64
	FomoScore     *float64
	PanicScore    *float64
	IsRevenge     bool
	Ticker        string
	PnL           float64
	TradeID       string
}

// Deep pattern type codes.
const (
	PatternTimeCluster      = "TIME_CLUSTER"
	PatternPriceCluster     = "PRICE_CLUSTER"
	PatternRevengeSequence  = "REVENGE_SEQUENCE"
	PatternMarketRegime     = "MARKET_REGIME"
	PatternBullRegimePanic  = "BULL_REGIME_PANIC"
	PatternMAECluster       = "MAE_CLUSTER"
	PatternShortTermChicken = "SHORT_TERM_CHICKEN"
	PatternLongTermLoss     = "LONG_TERM_LOSS"
)

// Pattern significance labels.
const (
	SignificanceHigh   = "HIGH"
	SignificanceMedium = "MEDIUM"
)

// DeepPattern is one recurring behavioral pattern found across the trade
// set, beyond the headline bias indices.
type DeepPattern struct {
	Type         string
	Description  string
	Significance string
	Metadata     map[string]float64
}

// PersonalPlaybook is a set of concrete trading rules derived from the
// trader's own observed patterns and bias priorities.
type PersonalPlaybook struct {
	Rules         []string
	BasedOnBiases []string
}
