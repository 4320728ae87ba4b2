package behavioral

import (
	"sort"
	"time"

	"trading-truth-lab/internal/domain"
)

// RevengeWindow is how soon after a same-ticker loss a re-entry counts as
// revenge trading.
const RevengeWindow = 24 * time.Hour

// SortByEntry orders trades chronologically by entry time, breaking ties by
// trade ID so the order is deterministic. Returns a new slice.
func SortByEntry(trades []domain.EnrichedTrade) []domain.EnrichedTrade {
	out := make([]domain.EnrichedTrade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].EntryTime.Before(out[j].EntryTime)
		}
		return out[i].TradeID < out[j].TradeID
	})
	return out
}

// FlagRevenge marks trades entered within RevengeWindow after a same-ticker
// loss closed. Input must be sorted by entry time (SortByEntry). The flags
// are a pure function of the trade list: the input is not mutated and
// running the pass twice yields identical output.
func FlagRevenge(trades []domain.EnrichedTrade) []domain.EnrichedTrade {
	out := make([]domain.EnrichedTrade, len(trades))
	copy(out, trades)

	// Prior trade indices per ticker, in entry order.
	prior := make(map[string][]int, 8)

	for i := range out {
		out[i].IsRevenge = false
		ticker := out[i].Ticker

		// Nearest prior loss wins; one match is enough, multiplicity is
		// not double-counted.
		seen := prior[ticker]
		for j := len(seen) - 1; j >= 0; j-- {
			prev := &out[seen[j]]
			if prev.PnL >= 0 {
				continue
			}
			gap := out[i].EntryTime.Sub(prev.ExitTime)
			if gap >= 0 && gap <= RevengeWindow {
				out[i].IsRevenge = true
				break
			}
		}

		prior[ticker] = append(prior[ticker], i)
	}

	return out
}
