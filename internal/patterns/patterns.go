// Package patterns mines the enriched trade set for recurring behavioral
// patterns that the headline bias indices cannot see: clustering in time of
// day, exit price placement, revenge cadence, regime-conditional habits and
// holding-time asymmetries.
package patterns

import (
	"fmt"

	"trading-truth-lab/internal/behavioral"
	"trading-truth-lab/internal/domain"
)

// Extraction thresholds. MAE below highMAEThreshold marks a position that
// went materially against the trader before exit.
const (
	minTradesForPatterns = 3
	highMAEThreshold     = -0.02
)

// Extract scans entry-ordered trades for deep patterns. Fewer than
// minTradesForPatterns trades yields nothing: there is no distribution to
// cluster yet.
func Extract(trades []domain.EnrichedTrade) []domain.DeepPattern {
	if len(trades) < minTradesForPatterns {
		return nil
	}

	var out []domain.DeepPattern
	highMAE := filter(trades, func(t *domain.EnrichedTrade) bool { return t.MAE < highMAEThreshold })

	if p := timeCluster(highMAE); p != nil {
		out = append(out, *p)
	}
	if p := priceCluster(trades); p != nil {
		out = append(out, *p)
	}
	if p := revengeSequence(trades); p != nil {
		out = append(out, *p)
	}
	if p := regimeFOMO(trades); p != nil {
		out = append(out, *p)
	}
	if p := bullRegimePanic(trades); p != nil {
		out = append(out, *p)
	}
	if p := maeCluster(trades, highMAE); p != nil {
		out = append(out, *p)
	}
	if p := shortTermChicken(trades); p != nil {
		out = append(out, *p)
	}
	if p := longTermLoss(trades); p != nil {
		out = append(out, *p)
	}
	return out
}

// timeCluster reports when the painful positions pile up in one entry hour.
func timeCluster(highMAE []domain.EnrichedTrade) *domain.DeepPattern {
	if len(highMAE) < 3 {
		return nil
	}
	byHour := map[int]int{}
	for i := range highMAE {
		byHour[highMAE[i].EntryTime.Hour()]++
	}
	peakHour, peakCount := -1, 0
	for h, c := range byHour {
		if c > peakCount || (c == peakCount && h < peakHour) {
			peakHour, peakCount = h, c
		}
	}
	peakPct := float64(peakCount) / float64(len(highMAE)) * 100
	if peakPct < 40 {
		return nil
	}
	sig := domain.SignificanceMedium
	if peakPct >= 60 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternTimeCluster,
		Description: fmt.Sprintf("%d of %d high-MAE positions (%.0f%%) were entered around %d:00",
			peakCount, len(highMAE), peakPct, peakHour),
		Significance: sig,
		Metadata: map[string]float64{
			"hour":  float64(peakHour),
			"count": float64(peakCount),
			"total": float64(len(highMAE)),
		},
	}
}

// priceCluster reports exits that systematically land well below the day
// high.
func priceCluster(trades []domain.EnrichedTrade) *domain.DeepPattern {
	valid := filter(trades, func(t *domain.EnrichedTrade) bool {
		return t.ExitDayHigh > 0 && t.PanicScore != domain.SentinelScore
	})
	if len(valid) < 5 {
		return nil
	}
	var sum float64
	for i := range valid {
		sum += valid[i].ExitPrice / valid[i].ExitDayHigh
	}
	avgRatio := sum / float64(len(valid))
	if avgRatio >= 0.95 {
		return nil
	}
	exitPct := (1 - avgRatio) * 100
	sig := domain.SignificanceMedium
	if exitPct > 5 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type:         domain.PatternPriceCluster,
		Description:  fmt.Sprintf("exits land on average %.1f%% below the day high", exitPct),
		Significance: sig,
		Metadata: map[string]float64{
			"avg_exit_ratio": avgRatio,
			"sample_size":    float64(len(valid)),
		},
	}
}

// revengeSequence measures how quickly re-entries follow losses. Trades
// must already be sorted by entry time.
func revengeSequence(trades []domain.EnrichedTrade) *domain.DeepPattern {
	revengeCount := 0
	for i := range trades {
		if trades[i].IsRevenge {
			revengeCount++
		}
	}
	if revengeCount < 2 {
		return nil
	}

	var gaps []float64
	for i := 1; i < len(trades); i++ {
		if !trades[i].IsRevenge {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if trades[j].PnL < 0 {
				gaps = append(gaps, trades[i].EntryTime.Sub(trades[j].ExitTime).Hours())
				break
			}
		}
	}
	if len(gaps) < 2 {
		return nil
	}
	var sum float64
	for _, g := range gaps {
		sum += g
	}
	avgHours := sum / float64(len(gaps))
	if avgHours >= 24 {
		return nil
	}
	sig := domain.SignificanceMedium
	if avgHours < 12 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternRevengeSequence,
		Description: fmt.Sprintf("re-entered on average %.1f hours after a realized loss, %d times",
			avgHours, len(gaps)),
		Significance: sig,
		Metadata: map[string]float64{
			"avg_hours": avgHours,
			"count":     float64(len(gaps)),
		},
	}
}

// regimeFOMO reports FOMO entries concentrated in rising markets.
func regimeFOMO(trades []domain.EnrichedTrade) *domain.DeepPattern {
	bull := filter(trades, func(t *domain.EnrichedTrade) bool { return t.MarketRegime == domain.RegimeBull })
	bear := filter(trades, func(t *domain.EnrichedTrade) bool { return t.MarketRegime == domain.RegimeBear })
	if len(bull) < 3 || len(bear) < 3 {
		return nil
	}
	bullRate := rate(bull, func(t *domain.EnrichedTrade) bool { return t.FomoScore > behavioral.FomoThreshold })
	bearRate := rate(bear, func(t *domain.EnrichedTrade) bool { return t.FomoScore > behavioral.FomoThreshold })
	if bullRate <= bearRate*1.5 {
		return nil
	}
	sig := domain.SignificanceMedium
	if bullRate > 0.5 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternMarketRegime,
		Description: fmt.Sprintf("FOMO entries concentrate in rising markets (bull: %.0f%%, bear: %.0f%%)",
			bullRate*100, bearRate*100),
		Significance: sig,
		Metadata: map[string]float64{
			"bull_fomo_rate": bullRate,
			"bear_fomo_rate": bearRate,
		},
	}
}

// bullRegimePanic reports panic exits that persist even in rising markets,
// where there is the least reason to capitulate.
func bullRegimePanic(trades []domain.EnrichedTrade) *domain.DeepPattern {
	bull := filter(trades, func(t *domain.EnrichedTrade) bool { return t.MarketRegime == domain.RegimeBull })
	bear := filter(trades, func(t *domain.EnrichedTrade) bool { return t.MarketRegime == domain.RegimeBear })
	if len(bull) < 3 || len(bear) < 3 {
		return nil
	}
	isPanic := func(t *domain.EnrichedTrade) bool {
		return t.PanicScore != domain.SentinelScore && t.PanicScore < behavioral.PanicThreshold
	}
	bullRate := rate(bull, isPanic)
	bearRate := rate(bear, isPanic)
	if bullRate < bearRate*0.8 || bullRate <= 0.2 {
		return nil
	}
	sig := domain.SignificanceMedium
	if bullRate > 0.3 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternBullRegimePanic,
		Description: fmt.Sprintf("panic exits persist in rising markets (bull: %.0f%%, bear: %.0f%%)",
			bullRate*100, bearRate*100),
		Significance: sig,
		Metadata: map[string]float64{
			"bull_panic_rate": bullRate,
			"bear_panic_rate": bearRate,
		},
	}
}

// maeCluster reports painful positions that are also held far longer than
// the trader's norm.
func maeCluster(trades, highMAE []domain.EnrichedTrade) *domain.DeepPattern {
	if len(highMAE) < 5 {
		return nil
	}
	avgHold := meanDuration(highMAE)
	overallAvg := meanDuration(trades)
	if avgHold <= overallAvg*1.5 {
		return nil
	}
	return &domain.DeepPattern{
		Type: domain.PatternMAECluster,
		Description: fmt.Sprintf("%d high-MAE positions held %.1f days on average (overall average: %.1f days)",
			len(highMAE), avgHold, overallAvg),
		Significance: domain.SignificanceMedium,
		Metadata: map[string]float64{
			"avg_hold_days": avgHold,
			"overall_avg":   overallAvg,
		},
	}
}

// shortTermChicken reports winners cut within about two hours for under 2%,
// the signature of taking tiny profits out of fear.
func shortTermChicken(trades []domain.EnrichedTrade) *domain.DeepPattern {
	winners := filter(trades, func(t *domain.EnrichedTrade) bool { return t.PnL > 0 })
	if len(winners) < 3 {
		return nil
	}
	short := filter(winners, func(t *domain.EnrichedTrade) bool {
		return t.DurationDays < 0.1 && t.ReturnPct < 0.02
	})
	if len(short) < 2 {
		return nil
	}
	shortRate := float64(len(short)) / float64(len(winners))
	if shortRate <= 0.3 {
		return nil
	}
	sig := domain.SignificanceMedium
	if shortRate > 0.5 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternShortTermChicken,
		Description: fmt.Sprintf("%d of %d winners (%.0f%%) closed within 2 hours for under 2%% gain",
			len(short), len(winners), shortRate*100),
		Significance: sig,
		Metadata: map[string]float64{
			"short_win_count": float64(len(short)),
			"short_win_rate":  shortRate,
			"total_winners":   float64(len(winners)),
		},
	}
}

// longTermLoss reports losers carried past 30 days before finally being cut.
func longTermLoss(trades []domain.EnrichedTrade) *domain.DeepPattern {
	losers := filter(trades, func(t *domain.EnrichedTrade) bool { return t.PnL <= 0 })
	if len(losers) < 3 {
		return nil
	}
	long := filter(losers, func(t *domain.EnrichedTrade) bool { return t.DurationDays > 30 })
	if len(long) < 2 {
		return nil
	}
	longRate := float64(len(long)) / float64(len(losers))
	if longRate <= 0.2 {
		return nil
	}
	avgDays := meanDuration(long)
	sig := domain.SignificanceMedium
	if longRate > 0.3 {
		sig = domain.SignificanceHigh
	}
	return &domain.DeepPattern{
		Type: domain.PatternLongTermLoss,
		Description: fmt.Sprintf("%d of %d losers (%.0f%%) held over 30 days before being cut (average %.1f days)",
			len(long), len(losers), longRate*100, avgDays),
		Significance: sig,
		Metadata: map[string]float64{
			"long_loss_count": float64(len(long)),
			"long_loss_rate":  longRate,
			"avg_days":        avgDays,
		},
	}
}

func filter(trades []domain.EnrichedTrade, keep func(*domain.EnrichedTrade) bool) []domain.EnrichedTrade {
	var out []domain.EnrichedTrade
	for i := range trades {
		if keep(&trades[i]) {
			out = append(out, trades[i])
		}
	}
	return out
}

func rate(trades []domain.EnrichedTrade, pred func(*domain.EnrichedTrade) bool) float64 {
	if len(trades) == 0 {
		return 0
	}
	n := 0
	for i := range trades {
		if pred(&trades[i]) {
			n++
		}
	}
	return float64(n) / float64(len(trades))
}

func meanDuration(trades []domain.EnrichedTrade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var sum float64
	for i := range trades {
		sum += trades[i].DurationDays
	}
	return sum / float64(len(trades))
}
