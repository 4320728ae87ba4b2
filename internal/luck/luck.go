// Package luck estimates how much of a realized PnL is explained by
// variance. It resamples the trader's own outcome distribution and ranks
// the realized total against the simulated totals.
package luck

import (
	"math/rand"
	"sort"

	"trading-truth-lab/internal/domain"
)

const (
	// Simulations is the number of Monte Carlo resamples per estimate.
	Simulations = 1000

	// MinTrades below which no estimate is attempted and the neutral
	// percentile 50 is returned.
	MinTrades = 5

	// Fixed seed keeps the estimate reproducible run to run.
	randSeed = 42
)

// Percentile returns the share of simulated outcomes, in percent, that
// beat the realized total PnL. High values mean the realized result was
// unlucky relative to the trader's own distribution; low values mean
// lucky. Fewer than MinTrades trades yields exactly 50.
func Percentile(trades []domain.EnrichedTrade) float64 {
	if len(trades) < MinTrades {
		return 50.0
	}

	var realized float64
	var winPnls, lossPnls []float64
	for _, t := range trades {
		realized += t.PnL
		if t.PnL > 0 {
			winPnls = append(winPnls, t.PnL)
		} else {
			lossPnls = append(lossPnls, -t.PnL)
		}
	}
	winRate := float64(len(winPnls)) / float64(len(trades))

	rng := rand.New(rand.NewSource(randSeed))

	better := 0
	results := make([]float64, 0, Simulations)
	for i := 0; i < Simulations; i++ {
		var total float64
		for j := 0; j < len(trades); j++ {
			if rng.Float64() < winRate {
				if len(winPnls) > 0 {
					total += winPnls[rng.Intn(len(winPnls))]
				}
			} else {
				if len(lossPnls) > 0 {
					total -= lossPnls[rng.Intn(len(lossPnls))]
				}
			}
		}
		results = append(results, total)
		if total > realized {
			better++
		}
	}

	percentile := float64(better) / float64(Simulations) * 100

	// Nudge the estimate when the realized total sits in an outer
	// quartile of the simulated distribution.
	sort.Float64s(results)
	p25 := results[Simulations/4]
	p75 := results[Simulations*3/4]
	if realized > p75 {
		percentile = max(0, percentile-5)
	} else if realized < p25 {
		percentile = min(100, percentile+5)
	}
	return percentile
}
