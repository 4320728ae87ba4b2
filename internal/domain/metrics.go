package domain

// BehavioralMetrics is the portfolio-level aggregate over one analysis run.
// Recomputed fully on every run; there is no incremental state.
type BehavioralMetrics struct {
	TotalTrades  int
	WinRate      float64
	ProfitFactor float64

	FomoIndex           float64 // mean valid fomo score; > 0.70 flags FOMO
	PanicIndex          float64 // 1 - mean valid panic score; higher = more panic exits
	DispositionRatio    float64 // loser hold / winner hold; > 1.5 flags disposition effect
	RevengeTradingCount int

	SharpeRatio    float64
	SortinoRatio   float64
	Alpha          float64 // total portfolio return minus the benchmark's over the same window
	LuckPercentile float64 // 50 exactly when the sample is too small
	TotalRegret    float64

	TruthScore int // bounded [0,100]
}

// PersonalBaseline captures the trader's own historical averages, used by
// callers to contextualize a single run. Requires at least 3 trades.
type PersonalBaseline struct {
	AvgFomo             float64
	AvgPanic            float64
	AvgMAE              float64 // mean absolute adverse excursion, >= 0
	AvgDispositionRatio float64
	AvgRevengeCount     float64 // revenge trades per trade
}

// BiasLossMapping attributes realized losses and missed gains to specific
// biases, in account currency.
type BiasLossMapping struct {
	FomoLoss        float64
	PanicLoss       float64
	RevengeLoss     float64
	DispositionLoss float64
}

// Bias names used across loss mapping, prioritization and shift detection.
const (
	BiasFOMO        = "FOMO"
	BiasPanicSell   = "Panic Sell"
	BiasRevenge     = "Revenge Trading"
	BiasDisposition = "Disposition Effect"
)

// BiasPriority is one ranked entry of the bias priority list. Priority is
// 1-based; biases with no loss and low frequency are omitted entirely.
type BiasPriority struct {
	Bias          string
	Priority      int
	FinancialLoss float64
	Frequency     float64 // fraction of trades exhibiting the pattern
	Severity      float64 // normalized distance beyond threshold, capped at 1
}

// Shift trend labels.
const (
	TrendImproving = "IMPROVING"
	TrendWorsening = "WORSENING"
	TrendStable    = "STABLE"
)

// BehaviorShift compares a bias metric in the recent trade window against
// the historical baseline window.
type BehaviorShift struct {
	Bias          string
	RecentValue   float64
	BaselineValue float64
	ChangePercent float64
	Trend         string
}
