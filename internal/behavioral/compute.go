// Package behavioral aggregates enriched trades into portfolio-level bias
// indices and the composite truth score. All functions are pure: metrics
// are recomputed fully on every run and no state survives between runs.
package behavioral

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"trading-truth-lab/internal/domain"
)

// Clinical thresholds: a trade entered above FomoThreshold of the day range
// is a FOMO buy; one exited below PanicThreshold is a panic sell.
const (
	FomoThreshold  = 0.7
	PanicThreshold = 0.3
)

// LowSampleSize is the minimum trade count for the luck simulation and the
// Sharpe-based truth-score bonus.
const LowSampleSize = 5

// dailyRiskFree is the risk-free rate subtracted from the mean return in
// the Sharpe ratio: 2% annual over 252 sessions.
const dailyRiskFree = 0.02 / 252

// Compute aggregates a trade list (already revenge-flagged and sorted by
// entry time) into BehavioralMetrics. Sentinel-scored trades are excluded
// from score averages but kept in every PnL-based metric. LuckPercentile is
// left at the neutral midpoint; the luck package fills it in.
func Compute(trades []domain.EnrichedTrade) domain.BehavioralMetrics {
	m := domain.BehavioralMetrics{
		TotalTrades:    len(trades),
		LuckPercentile: 50,
	}
	if len(trades) == 0 {
		m.PanicIndex = 1 // penalty-neutral, see panicIndex
		m.TruthScore = composeTruthScore(m, 0, true)
		return m
	}

	var (
		winners, losers         int
		grossWin, grossLoss     float64
		winHoldSum, lossHoldSum float64
		returns                 []float64
	)
	for i := range trades {
		t := &trades[i]
		returns = append(returns, t.ReturnPct)
		m.TotalRegret += t.Regret
		if t.IsRevenge {
			m.RevengeTradingCount++
		}
		if t.IsWinner() {
			winners++
			grossWin += t.PnL
			winHoldSum += t.DurationDays
		} else {
			losers++
			grossLoss += -t.PnL
			lossHoldSum += t.DurationDays
		}
	}

	m.WinRate = float64(winners) / float64(len(trades))
	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	}

	m.FomoIndex = meanValidFomo(trades, false)
	m.PanicIndex = panicIndex(trades)
	m.DispositionRatio = dispositionRatio(winners, losers, winHoldSum, lossHoldSum)
	m.SharpeRatio = sharpe(returns)
	m.SortinoRatio = sortino(returns)

	lowSample := len(trades) < LowSampleSize
	m.TruthScore = composeTruthScore(m, meanValidFomo(trades, true), lowSample)
	return m
}

// meanValidFomo averages fomo scores over sentinel-free trades. With
// regimeWeighted, each score is scaled by the market regime before
// averaging: chasing highs in a falling market is penalized harder (x1.5),
// buying strength in a rising one is partially excused (x0.8).
func meanValidFomo(trades []domain.EnrichedTrade, regimeWeighted bool) float64 {
	var sum float64
	n := 0
	for i := range trades {
		t := &trades[i]
		if t.FomoScore == domain.SentinelScore {
			continue
		}
		score := t.FomoScore
		if regimeWeighted {
			switch t.MarketRegime {
			case domain.RegimeBear:
				score *= 1.5
			case domain.RegimeBull:
				score *= 0.8
			}
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// panicIndex is one minus the regime-weighted mean panic score: higher
// means more panic-driven exits. Selling into a bull-market low is graver
// than capitulating in an already-falling market, so those scores are
// pushed further down (x0.67) before averaging.
func panicIndex(trades []domain.EnrichedTrade) float64 {
	var sum float64
	n := 0
	for i := range trades {
		t := &trades[i]
		if t.PanicScore == domain.SentinelScore {
			continue
		}
		score := t.PanicScore
		if t.MarketRegime == domain.RegimeBull && score < PanicThreshold {
			score = math.Max(0, score*0.67)
		}
		sum += score
		n++
	}
	if n == 0 {
		// No valid observations: resolve to the penalty-neutral value so
		// an all-sentinel trade set cannot move the truth score.
		return 1
	}
	return 1 - sum/float64(n)
}

// dispositionRatio is mean loser hold over mean winner hold. Undefined
// cases (no winners, zero winner hold) resolve to 0, not NaN.
func dispositionRatio(winners, losers int, winHoldSum, lossHoldSum float64) float64 {
	if winners == 0 || losers == 0 {
		return 0
	}
	avgWinHold := winHoldSum / float64(winners)
	if avgWinHold <= 0 {
		return 0
	}
	return (lossHoldSum / float64(losers)) / avgWinHold
}

// sharpe is the risk-adjusted mean per-trade return. Zero when the return
// series is degenerate.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	if sd <= 0 || math.IsNaN(sd) {
		return 0
	}
	return (mean - dailyRiskFree) / sd
}

// sortino replaces the denominator with downside deviation (RMS of negative
// returns). Zero when there are no losing returns.
func sortino(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := stat.Mean(returns, nil)

	var sumSq float64
	n := 0
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	downside := math.Sqrt(sumSq / float64(n))
	if downside <= 0 {
		return 0
	}
	return mean / downside
}

// composeTruthScore folds the bias indices into one bounded 0-100 score.
// Start at 50, reward win rate, subtract weighted penalties per bias, then
// a Sharpe bonus that only applies once the sample is large enough to mean
// anything (a flat neutral bonus otherwise). weightedFomo is the
// regime-weighted fomo index.
func composeTruthScore(m domain.BehavioralMetrics, weightedFomo float64, lowSample bool) int {
	score := 50.0
	score += m.WinRate * 20
	score -= weightedFomo * 20
	score -= (1 - m.PanicIndex) * 20
	score -= math.Max(0, m.DispositionRatio-1) * 10
	score -= float64(m.RevengeTradingCount) * 5
	if lowSample {
		score += 5
	} else {
		score += m.SharpeRatio * 5
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}
