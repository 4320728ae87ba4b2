// Package bias attributes realized losses to specific behavioral biases
// and ranks the biases by how much fixing each one is worth.
package bias

import (
	"math"
	"sort"

	"trading-truth-lab/internal/behavioral"
	"trading-truth-lab/internal/domain"
)

// BaselineMinTrades is the minimum sample for a personal baseline.
const BaselineMinTrades = 3

// Baseline summarizes the trader's own historical averages. Returns nil
// below BaselineMinTrades trades.
func Baseline(trades []domain.EnrichedTrade, m domain.BehavioralMetrics) *domain.PersonalBaseline {
	if len(trades) < BaselineMinTrades {
		return nil
	}

	var maeSum float64
	maeCount := 0
	for i := range trades {
		if trades[i].MAE != 0 {
			maeSum += trades[i].MAE
			maeCount++
		}
	}
	avgMAE := 0.0
	if maeCount > 0 {
		if mean := maeSum / float64(maeCount); mean < 0 {
			avgMAE = -mean
		}
	}

	return &domain.PersonalBaseline{
		AvgFomo:             m.FomoIndex,
		AvgPanic:            m.PanicIndex,
		AvgMAE:              avgMAE,
		AvgDispositionRatio: m.DispositionRatio,
		AvgRevengeCount:     float64(m.RevengeTradingCount) / float64(len(trades)),
	}
}

// MapLosses sums, per bias, the realized losses of the trades exhibiting
// it. Disposition loss is the regret left on the table by winners sold
// early rather than a realized loss. Returns nil for an empty trade set.
func MapLosses(trades []domain.EnrichedTrade) *domain.BiasLossMapping {
	if len(trades) == 0 {
		return nil
	}

	var m domain.BiasLossMapping
	for i := range trades {
		t := &trades[i]
		if t.HasScores() {
			if t.FomoScore > behavioral.FomoThreshold && t.PnL < 0 {
				m.FomoLoss += -t.PnL
			}
			if t.PanicScore < behavioral.PanicThreshold && t.PnL < 0 {
				m.PanicLoss += -t.PnL
			}
		}
		if t.IsRevenge && t.PnL < 0 {
			m.RevengeLoss += -t.PnL
		}
		if t.PnL > 0 && t.Regret > 0 {
			m.DispositionLoss += t.Regret
		}
	}
	return &m
}

// Prioritize ranks the biases worth working on, loss-weighted with
// frequency and severity as secondary signals. A bias enters the list when
// it has caused actual loss or shows up often enough to be a latent risk.
// Returns nil when nothing qualifies.
func Prioritize(trades []domain.EnrichedTrade, m domain.BehavioralMetrics, losses *domain.BiasLossMapping) []domain.BiasPriority {
	if losses == nil || len(trades) == 0 {
		return nil
	}
	total := float64(len(trades))

	highFomo, lowPanic, winners, winnersWithRegret := 0, 0, 0, 0
	for i := range trades {
		t := &trades[i]
		if t.FomoScore != domain.SentinelScore && t.FomoScore > behavioral.FomoThreshold {
			highFomo++
		}
		if t.PanicScore != domain.SentinelScore && t.PanicScore < behavioral.PanicThreshold {
			lowPanic++
		}
		if t.PnL > 0 {
			winners++
			if t.Regret > 0 {
				winnersWithRegret++
			}
		}
	}

	var out []domain.BiasPriority

	fomoFreq := float64(highFomo) / total
	fomoSev := 0.0
	if m.FomoIndex > 0 {
		fomoSev = math.Min(1, m.FomoIndex/0.8)
	}
	if losses.FomoLoss > 0 || fomoFreq > 0.3 {
		out = append(out, domain.BiasPriority{
			Bias:          domain.BiasFOMO,
			FinancialLoss: losses.FomoLoss,
			Frequency:     fomoFreq,
			Severity:      fomoSev,
		})
	}

	panicFreq := float64(lowPanic) / total
	panicSev := 0.0
	if m.PanicIndex < 1 {
		panicSev = math.Min(1, (1-m.PanicIndex)/0.8)
	}
	if losses.PanicLoss > 0 || panicFreq > 0.3 {
		out = append(out, domain.BiasPriority{
			Bias:          domain.BiasPanicSell,
			FinancialLoss: losses.PanicLoss,
			Frequency:     panicFreq,
			Severity:      panicSev,
		})
	}

	revengeFreq := float64(m.RevengeTradingCount) / total
	revengeSev := 0.0
	if m.RevengeTradingCount > 0 {
		revengeSev = math.Min(1, float64(m.RevengeTradingCount)/3.0)
	}
	if losses.RevengeLoss > 0 || m.RevengeTradingCount > 0 {
		out = append(out, domain.BiasPriority{
			Bias:          domain.BiasRevenge,
			FinancialLoss: losses.RevengeLoss,
			Frequency:     revengeFreq,
			Severity:      revengeSev,
		})
	}

	dispFreq := 0.0
	if winners > 0 {
		dispFreq = float64(winnersWithRegret) / float64(winners)
	}
	dispSev := 0.0
	if m.DispositionRatio > 1 {
		dispSev = math.Min(1, (m.DispositionRatio-1)/1.5)
	}
	if losses.DispositionLoss > 0 || m.DispositionRatio > 1.2 {
		out = append(out, domain.BiasPriority{
			Bias:          domain.BiasDisposition,
			FinancialLoss: losses.DispositionLoss,
			Frequency:     dispFreq,
			Severity:      dispSev,
		})
	}

	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		return priorityScore(out[i]) > priorityScore(out[j])
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}

// priorityScore is loss-dominated: a dollar of attributed loss outweighs
// frequency and severity points. When the attributed loss is small the
// behavioral signals take over, and a bias that is both frequent and
// severe is escalated as a latent risk even before it costs money.
func priorityScore(p domain.BiasPriority) float64 {
	score := p.FinancialLoss * 10
	if p.FinancialLoss < 50 {
		if p.Frequency > 0.5 && p.Severity > 0.6 {
			score += p.Frequency*100*20 + p.Severity*100*15
		} else {
			score += p.Frequency*100*10 + p.Severity*100*5
		}
	} else {
		score += p.Frequency*100*20 + p.Severity*100*10
	}
	return score
}
