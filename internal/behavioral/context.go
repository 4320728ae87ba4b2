package behavioral

import (
	"math"

	"trading-truth-lab/internal/domain"
)

// contextualScoreCap bounds the displayed contextual score; the weights can
// push a perfect base score past 100.
const contextualScoreCap = 150

// RegimeWeight grades how badly a trade's behavior fits the market regime
// it happened in. Panic-selling a rising market and chasing a bounce in a
// falling one draw the maximum weight; buying strength in a bull market is
// partially excused. Sideways and unknown regimes carry no weight.
func RegimeWeight(regime string, fomoScore, panicScore float64) float64 {
	fomoBuy := fomoScore != domain.SentinelScore && fomoScore >= FomoThreshold
	panicSell := panicScore != domain.SentinelScore && panicScore <= PanicThreshold

	switch regime {
	case domain.RegimeBull:
		if panicSell {
			return 1.5
		}
		if fomoBuy {
			return 0.8
		}
	case domain.RegimeBear:
		if fomoBuy {
			return 1.5
		}
	}
	return 1.0
}

// Decompose breaks a trade's contextual score into its factors. Only trades
// showing a flagged behavior (high FOMO entry, panic exit, or revenge) get
// a decomposition; calm trades return nil.
func Decompose(t *domain.EnrichedTrade) *domain.ScoreDecomposition {
	fomoBuy := t.FomoScore != domain.SentinelScore && t.FomoScore >= FomoThreshold
	panicSell := t.PanicScore != domain.SentinelScore && t.PanicScore <= PanicThreshold
	if !fomoBuy && !panicSell && !t.IsRevenge {
		return nil
	}

	// Base score carries the pure psychology penalties on the pre-weight
	// scores, up to 20 points each.
	base := 100.0
	if t.FomoScore != domain.SentinelScore {
		base -= t.FomoScoreBase * 20
	}
	if t.PanicScore != domain.SentinelScore {
		base -= (1 - t.PanicScoreBase) * 20
	}
	base = math.Max(0, math.Min(100, base))

	volumeWeight := math.Max(t.VolumeWeightEntry, t.VolumeWeightExit)
	regimeWeight := RegimeWeight(t.MarketRegime, t.FomoScore, t.PanicScore)

	contextual := base * volumeWeight * regimeWeight
	contextual = math.Max(0, math.Min(contextualScoreCap, contextual))

	return &domain.ScoreDecomposition{
		BaseScore:       base,
		VolumeWeight:    volumeWeight,
		RegimeWeight:    regimeWeight,
		ContextualScore: contextual,
	}
}

// Alpha is the total portfolio return over all trades minus the benchmark's
// return across the same window, taken from its first and last available
// close. Zero when no benchmark closes were available.
func Alpha(trades []domain.EnrichedTrade, benchmarkCloses []float64) float64 {
	if len(trades) == 0 {
		return 0
	}
	var total float64
	for i := range trades {
		total += trades[i].ReturnPct
	}

	if len(benchmarkCloses) == 0 {
		return 0
	}
	first := benchmarkCloses[0]
	last := benchmarkCloses[len(benchmarkCloses)-1]
	if first <= 0 {
		return 0
	}
	return total - (last-first)/first
}
