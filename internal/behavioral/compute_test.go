package behavioral

import (
	"math"
	"testing"
	"time"

	"trading-truth-lab/internal/domain"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

// enriched builds a minimal valid enriched trade for aggregation tests.
func enriched(id, ticker string, entry, exit time.Time, pnl, fomo, panic float64) domain.EnrichedTrade {
	t := domain.EnrichedTrade{
		MatchedTrade: domain.MatchedTrade{
			TradeID:   id,
			Ticker:    ticker,
			EntryTime: entry,
			ExitTime:  exit,
			Quantity:  1,
		},
		PnL:          pnl,
		FomoScore:    fomo,
		PanicScore:   panic,
		MarketRegime: domain.RegimeUnknown,
	}
	t.DurationDays = exit.Sub(entry).Hours() / 24
	if pnl >= 0 {
		t.ReturnPct = 0.1
	} else {
		t.ReturnPct = -0.1
	}
	return t
}

func TestCompute_WinRateAndProfitFactor(t *testing.T) {
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.5, 0.5),
		enriched("b", "AAPL", at(3, 0), at(4, 0), -50, 0.5, 0.5),
		enriched("c", "MSFT", at(5, 0), at(6, 0), 200, 0.5, 0.5),
		enriched("d", "MSFT", at(7, 0), at(8, 0), -100, 0.5, 0.5),
	}

	m := Compute(trades)

	if m.TotalTrades != 4 {
		t.Errorf("expected 4 trades, got %d", m.TotalTrades)
	}
	if m.WinRate != 0.5 {
		t.Errorf("expected win rate 0.5, got %f", m.WinRate)
	}
	if m.ProfitFactor != 2.0 {
		t.Errorf("expected profit factor 2.0, got %f", m.ProfitFactor)
	}
}

func TestCompute_SentinelExcludedFromScoreAverages(t *testing.T) {
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.8, 0.5),
		enriched("b", "AAPL", at(3, 0), at(4, 0), 100, domain.SentinelScore, domain.SentinelScore),
	}

	m := Compute(trades)

	// The sentinel trade contributes 0 to the denominator: index equals
	// the single valid score, not the mean over both.
	if m.FomoIndex != 0.8 {
		t.Errorf("expected fomo index 0.8, got %f", m.FomoIndex)
	}
	// But PnL-based metrics still count it.
	if m.WinRate != 1.0 {
		t.Errorf("expected win rate 1.0, got %f", m.WinRate)
	}
}

func TestCompute_PanicIndexInvertsMeanScore(t *testing.T) {
	// Exits near the day low (score 0.1) must read as high panic: the
	// index is 1 - mean, and the truth-score penalty is (1 - index) * 20.
	var trades []domain.EnrichedTrade
	for i := 0; i < 5; i++ {
		trades = append(trades, enriched("x", "AAPL", at(1+i, 0), at(2+i, 0), 100, 0, 0.1))
	}

	m := Compute(trades)

	if math.Abs(m.PanicIndex-0.9) > 1e-9 {
		t.Errorf("expected panic index 0.9, got %f", m.PanicIndex)
	}
	// 50 base + 20 win rate - 2 panic penalty; sharpe is 0 on a flat
	// return series.
	if m.TruthScore != 68 {
		t.Errorf("expected truth score 68, got %d", m.TruthScore)
	}
}

func TestCompute_DispositionRatio(t *testing.T) {
	// Losers held 3x as long as winners.
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.5, 0.5),  // 1 day win
		enriched("b", "AAPL", at(3, 0), at(6, 0), -50, 0.5, 0.5),  // 3 day loss
		enriched("c", "MSFT", at(7, 0), at(8, 0), 100, 0.5, 0.5),  // 1 day win
		enriched("d", "MSFT", at(9, 0), at(12, 0), -50, 0.5, 0.5), // 3 day loss
	}

	m := Compute(trades)
	if math.Abs(m.DispositionRatio-3.0) > 1e-9 {
		t.Errorf("expected disposition ratio 3.0, got %f", m.DispositionRatio)
	}
}

func TestCompute_DispositionRatioZeroWithoutWinners(t *testing.T) {
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), -50, 0.5, 0.5),
		enriched("b", "AAPL", at(3, 0), at(6, 0), -50, 0.5, 0.5),
	}

	m := Compute(trades)
	if m.DispositionRatio != 0 {
		t.Errorf("expected disposition ratio 0 without winners, got %f", m.DispositionRatio)
	}
}

func TestCompute_TruthScoreBounded(t *testing.T) {
	// Pathologically bad trader: all losses, heavy revenge, max fomo.
	var trades []domain.EnrichedTrade
	for i := 0; i < 20; i++ {
		tr := enriched("x", "AAPL", at(1+i/2, i%24), at(1+i/2, i%24+1), -100, 1.0, 0.0)
		tr.IsRevenge = true
		trades = append(trades, tr)
	}
	m := Compute(trades)
	if m.TruthScore < 0 || m.TruthScore > 100 {
		t.Errorf("truth score out of bounds: %d", m.TruthScore)
	}
	if m.TruthScore != 0 {
		t.Errorf("expected floor 0 for pathological input, got %d", m.TruthScore)
	}

	// Empty input also stays in bounds.
	m = Compute(nil)
	if m.TruthScore < 0 || m.TruthScore > 100 {
		t.Errorf("truth score out of bounds for empty input: %d", m.TruthScore)
	}
}

func TestCompute_NoNaNOrInf(t *testing.T) {
	cases := [][]domain.EnrichedTrade{
		nil,
		{enriched("a", "AAPL", at(1, 0), at(1, 0), 0, domain.SentinelScore, domain.SentinelScore)},
		{enriched("a", "AAPL", at(1, 0), at(1, 0), 100, 0.5, 0.5)}, // zero-duration winner
	}

	for i, trades := range cases {
		m := Compute(trades)
		for name, v := range map[string]float64{
			"winRate":          m.WinRate,
			"profitFactor":     m.ProfitFactor,
			"fomoIndex":        m.FomoIndex,
			"panicIndex":       m.PanicIndex,
			"dispositionRatio": m.DispositionRatio,
			"sharpe":           m.SharpeRatio,
			"sortino":          m.SortinoRatio,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("case %d: %s is not finite: %f", i, name, v)
			}
		}
	}
}

func TestFlagRevenge_WithinWindow(t *testing.T) {
	// Loss on X closing at t, new entry on X at t+2h → revenge. The same
	// entry at t+30h → not revenge.
	lossExit := at(2, 10)
	trades := []domain.EnrichedTrade{
		enriched("a", "X", at(1, 10), lossExit, -100, 0.5, 0.5),
		enriched("b", "X", lossExit.Add(2*time.Hour), at(3, 10), 50, 0.5, 0.5),
		enriched("c", "X", lossExit.Add(30*time.Hour), at(4, 10), 50, 0.5, 0.5),
	}

	flagged := FlagRevenge(SortByEntry(trades))

	if !flagged[1].IsRevenge {
		t.Error("expected re-entry 2h after loss to be flagged")
	}
	if flagged[2].IsRevenge {
		t.Error("expected re-entry 30h after loss to not be flagged")
	}
	if flagged[0].IsRevenge {
		t.Error("expected the loss itself to not be flagged")
	}
}

func TestFlagRevenge_TickerScoped(t *testing.T) {
	lossExit := at(2, 10)
	trades := []domain.EnrichedTrade{
		enriched("a", "X", at(1, 10), lossExit, -100, 0.5, 0.5),
		enriched("b", "Y", lossExit.Add(time.Hour), at(3, 10), 50, 0.5, 0.5),
	}

	flagged := FlagRevenge(SortByEntry(trades))
	if flagged[1].IsRevenge {
		t.Error("expected loss on X to not flag re-entry on Y")
	}
}

func TestFlagRevenge_PriorWinDoesNotFlag(t *testing.T) {
	winExit := at(2, 10)
	trades := []domain.EnrichedTrade{
		enriched("a", "X", at(1, 10), winExit, 100, 0.5, 0.5),
		enriched("b", "X", winExit.Add(time.Hour), at(3, 10), 50, 0.5, 0.5),
	}

	flagged := FlagRevenge(SortByEntry(trades))
	if flagged[1].IsRevenge {
		t.Error("expected re-entry after a win to not be flagged")
	}
}

func TestFlagRevenge_Idempotent(t *testing.T) {
	lossExit := at(2, 10)
	trades := SortByEntry([]domain.EnrichedTrade{
		enriched("a", "X", at(1, 10), lossExit, -100, 0.5, 0.5),
		enriched("b", "X", lossExit.Add(2*time.Hour), at(3, 10), 50, 0.5, 0.5),
	})

	once := FlagRevenge(trades)
	twice := FlagRevenge(once)

	for i := range once {
		if once[i].IsRevenge != twice[i].IsRevenge {
			t.Fatalf("flags changed between runs at index %d", i)
		}
	}
	// Input slice is untouched.
	if trades[1].IsRevenge {
		t.Error("expected input slice to remain unmutated")
	}
}

func TestCompute_RegimeWeightingShiftsTruthScore(t *testing.T) {
	// Identical fomo profile; chasing highs in a BEAR market must score
	// no better than in an unknown regime.
	mk := func(regime string) []domain.EnrichedTrade {
		var out []domain.EnrichedTrade
		for i := 0; i < 6; i++ {
			tr := enriched("x", "AAPL", at(1+i, 0), at(2+i, 0), 100, 0.9, 0.5)
			tr.MarketRegime = regime
			out = append(out, tr)
		}
		return out
	}

	bear := Compute(mk(domain.RegimeBear))
	neutral := Compute(mk(domain.RegimeUnknown))
	if bear.TruthScore > neutral.TruthScore {
		t.Errorf("expected bear-market FOMO to score no better: bear=%d neutral=%d", bear.TruthScore, neutral.TruthScore)
	}
}
