// Package shift compares the most recent trades against the trader's
// earlier baseline to detect whether each bias is improving or worsening.
package shift

import (
	"trading-truth-lab/internal/domain"
)

const (
	// MinTrades is the minimum sample before any shift is reported.
	MinTrades = 6

	// RecentWindow is the number of trailing trades treated as "recent".
	RecentWindow = 3
)

// Deadbands below which a change is reported as STABLE. Score averages move
// on a tighter band than the rate and ratio metrics.
const (
	scoreDeadbandPct = 5
	rateDeadbandPct  = 10
)

// Detect splits entry-ordered trades into a recent window and a baseline
// and reports the relative change per bias. Metrics whose baseline is
// degenerate (no valid scores, no winners) are skipped rather than reported
// as infinite change. Returns nil below MinTrades trades or when no metric
// is comparable.
func Detect(trades []domain.EnrichedTrade) []domain.BehaviorShift {
	if len(trades) < MinTrades {
		return nil
	}
	split := len(trades) - RecentWindow
	if split < 1 {
		split = 1
	}
	base, recent := trades[:split], trades[len(trades)-RecentWindow:]

	var out []domain.BehaviorShift

	recentFomo := meanValid(recent, func(t *domain.EnrichedTrade) float64 { return t.FomoScore })
	baseFomo := meanValid(base, func(t *domain.EnrichedTrade) float64 { return t.FomoScore })
	if baseFomo > 0 {
		change := (recentFomo - baseFomo) / baseFomo * 100
		out = append(out, domain.BehaviorShift{
			Bias:          domain.BiasFOMO,
			RecentValue:   recentFomo,
			BaselineValue: baseFomo,
			ChangePercent: change,
			// Lower fomo scores mean less chasing.
			Trend: trend(change, scoreDeadbandPct, false),
		})
	}

	recentPanic := meanValid(recent, func(t *domain.EnrichedTrade) float64 { return t.PanicScore })
	basePanic := meanValid(base, func(t *domain.EnrichedTrade) float64 { return t.PanicScore })
	if basePanic > 0 {
		change := (recentPanic - basePanic) / basePanic * 100
		out = append(out, domain.BehaviorShift{
			Bias:          domain.BiasPanicSell,
			RecentValue:   recentPanic,
			BaselineValue: basePanic,
			ChangePercent: change,
			// Higher panic scores mean exits closer to the day high.
			Trend: trend(change, scoreDeadbandPct, true),
		})
	}

	recentRevenge := revengeRate(recent)
	baseRevenge := revengeRate(base)
	if baseRevenge > 0 || recentRevenge > 0 {
		// The +0.01 keeps a zero baseline from blowing up the ratio.
		change := (recentRevenge - baseRevenge) / (baseRevenge + 0.01) * 100
		out = append(out, domain.BehaviorShift{
			Bias:          domain.BiasRevenge,
			RecentValue:   recentRevenge,
			BaselineValue: baseRevenge,
			ChangePercent: change,
			Trend:         trend(change, rateDeadbandPct, false),
		})
	}

	recentDisp := dispositionRatio(recent)
	baseDisp := dispositionRatio(base)
	if baseDisp > 0 && recentDisp > 0 {
		change := (recentDisp - baseDisp) / baseDisp * 100
		out = append(out, domain.BehaviorShift{
			Bias:          domain.BiasDisposition,
			RecentValue:   recentDisp,
			BaselineValue: baseDisp,
			ChangePercent: change,
			Trend:         trend(change, rateDeadbandPct, false),
		})
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// trend classifies a percent change against a symmetric deadband. With
// higherIsBetter, a rising metric is the improvement.
func trend(changePct, deadband float64, higherIsBetter bool) string {
	if changePct > deadband {
		if higherIsBetter {
			return domain.TrendImproving
		}
		return domain.TrendWorsening
	}
	if changePct < -deadband {
		if higherIsBetter {
			return domain.TrendWorsening
		}
		return domain.TrendImproving
	}
	return domain.TrendStable
}

func meanValid(trades []domain.EnrichedTrade, score func(*domain.EnrichedTrade) float64) float64 {
	var sum float64
	n := 0
	for i := range trades {
		if v := score(&trades[i]); v != domain.SentinelScore {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func revengeRate(trades []domain.EnrichedTrade) float64 {
	if len(trades) == 0 {
		return 0
	}
	n := 0
	for i := range trades {
		if trades[i].IsRevenge {
			n++
		}
	}
	return float64(n) / float64(len(trades))
}

func dispositionRatio(trades []domain.EnrichedTrade) float64 {
	var winHold, lossHold float64
	winners, losers := 0, 0
	for i := range trades {
		t := &trades[i]
		if t.PnL > 0 {
			winners++
			winHold += t.DurationDays
		} else {
			losers++
			lossHold += t.DurationDays
		}
	}
	if winners == 0 || losers == 0 {
		return 0
	}
	avgWin := winHold / float64(winners)
	if avgWin <= 0 {
		return 0
	}
	return (lossHold / float64(losers)) / avgWin
}
