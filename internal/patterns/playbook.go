package patterns

import (
	"fmt"

	"trading-truth-lab/internal/domain"
)

// Playbook turns the extracted patterns, ranked biases and personal
// baseline into concrete standing rules. Rules are phrased as prohibitions
// the trader can check before acting. At least one rule is always returned.
func Playbook(
	deepPatterns []domain.DeepPattern,
	biasPriority []domain.BiasPriority,
	baseline *domain.PersonalBaseline,
	trades []domain.EnrichedTrade,
) *domain.PersonalPlaybook {
	var rules []string
	var biases []string

	for _, p := range deepPatterns {
		if p.Type != domain.PatternTimeCluster {
			continue
		}
		hour := int(p.Metadata["hour"])
		switch {
		case hour >= 14 && hour <= 15:
			rules = append(rules, "No new entries between 2pm and 3pm")
		case hour >= 9 && hour <= 10:
			rules = append(rules, "No trading in the first 20 minutes after the open")
		}
	}

	if len(biasPriority) > 0 && biasPriority[0].Bias == domain.BiasFOMO {
		if baseline != nil && baseline.AvgFomo > 0.8 {
			rules = append(rules, "No trading in the first 20 minutes after the open (FOMO guard)")
		} else if baseline != nil && baseline.AvgFomo > 0.7 {
			rules = append(rules, "Wait 30 minutes before entering to avoid buying the high")
		}
		biases = append(biases, domain.BiasFOMO)
	}

	if baseline != nil && baseline.AvgMAE > 0.02 {
		rules = append(rules, fmt.Sprintf("No re-entry once a position has gone %.0f%% against you", baseline.AvgMAE*100))
	}

	for _, p := range deepPatterns {
		if p.Type == domain.PatternMAECluster {
			if avgHold := p.Metadata["avg_hold_days"]; avgHold > 3 {
				rules = append(rules, fmt.Sprintf("Consider cutting any position held past %.0f days", avgHold))
			}
		}
	}

	for _, p := range deepPatterns {
		if p.Type == domain.PatternPriceCluster {
			if p.Metadata["avg_exit_ratio"] < 0.95 {
				rules = append(rules, "No entries above 95% of the day high")
			}
		}
	}

	revengeCount := 0
	for i := range trades {
		if trades[i].IsRevenge {
			revengeCount++
		}
	}
	if revengeCount >= 2 {
		rules = append(rules, "No re-buying within 24 hours of closing a loss")
		biases = append(biases, domain.BiasRevenge)
	}

	for _, p := range deepPatterns {
		if p.Type == domain.PatternRevengeSequence {
			if p.Metadata["avg_hours"] < 12 {
				rules = append(rules, "No trading for at least 12 hours after a loss")
			}
		}
	}

	for _, b := range biasPriority {
		if b.Bias == domain.BiasPanicSell {
			if baseline != nil && baseline.AvgPanic < 0.3 {
				rules = append(rules, "Wait 10 minutes before exiting to avoid selling the low")
			}
			biases = append(biases, domain.BiasPanicSell)
			break
		}
	}

	for _, b := range biasPriority {
		if b.Bias == domain.BiasDisposition {
			if baseline != nil && baseline.AvgDispositionRatio > 1.5 {
				rules = append(rules, "Cut losers faster than you take winners")
			}
			biases = append(biases, domain.BiasDisposition)
			break
		}
	}

	for _, p := range deepPatterns {
		if p.Type == domain.PatternMarketRegime {
			if p.Metadata["bull_fomo_rate"] > 0.5 {
				rules = append(rules, "In rising markets, slow down and pick entries deliberately")
			}
		}
	}

	if len(rules) == 0 {
		rules = append(rules, "Pause before every trade and check your emotional state")
	}

	return &domain.PersonalPlaybook{
		Rules:         rules,
		BasedOnBiases: biases,
	}
}
