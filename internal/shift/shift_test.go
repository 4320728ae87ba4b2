package shift

import (
	"testing"
	"time"

	"trading-truth-lab/internal/domain"
)

func mkTrade(day int, pnl, fomo, panic, durationDays float64) domain.EnrichedTrade {
	entry := time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC)
	return domain.EnrichedTrade{
		MatchedTrade: domain.MatchedTrade{
			Ticker:    "AAPL",
			EntryTime: entry,
			ExitTime:  entry.Add(time.Duration(durationDays*24) * time.Hour),
			Quantity:  1,
		},
		PnL:          pnl,
		FomoScore:    fomo,
		PanicScore:   panic,
		DurationDays: durationDays,
	}
}

func findShift(shifts []domain.BehaviorShift, bias string) *domain.BehaviorShift {
	for i := range shifts {
		if shifts[i].Bias == bias {
			return &shifts[i]
		}
	}
	return nil
}

func TestDetect_RequiresMinimumSample(t *testing.T) {
	var trades []domain.EnrichedTrade
	for day := 1; day <= 5; day++ {
		trades = append(trades, mkTrade(day, 100, 0.5, 0.5, 1))
	}
	if got := Detect(trades); got != nil {
		t.Errorf("expected nil below %d trades, got %+v", MinTrades, got)
	}
}

func TestDetect_FomoWorsening(t *testing.T) {
	// Baseline at 0.4, recent three at 0.8: +100%, well past the deadband.
	trades := []domain.EnrichedTrade{
		mkTrade(1, 100, 0.4, 0.5, 1),
		mkTrade(2, -50, 0.4, 0.5, 1),
		mkTrade(3, 100, 0.4, 0.5, 1),
		mkTrade(4, 100, 0.8, 0.5, 1),
		mkTrade(5, -50, 0.8, 0.5, 1),
		mkTrade(6, 100, 0.8, 0.5, 1),
	}

	s := findShift(Detect(trades), domain.BiasFOMO)
	if s == nil {
		t.Fatal("expected a FOMO shift")
	}
	if s.Trend != domain.TrendWorsening {
		t.Errorf("expected WORSENING, got %s", s.Trend)
	}
	if s.BaselineValue != 0.4 || s.RecentValue != 0.8 {
		t.Errorf("unexpected values: %+v", s)
	}
}

func TestDetect_PanicDirectionInverted(t *testing.T) {
	// Rising panic scores mean calmer exits, so the trend improves.
	trades := []domain.EnrichedTrade{
		mkTrade(1, 100, 0.5, 0.2, 1),
		mkTrade(2, -50, 0.5, 0.2, 1),
		mkTrade(3, 100, 0.5, 0.2, 1),
		mkTrade(4, 100, 0.5, 0.6, 1),
		mkTrade(5, -50, 0.5, 0.6, 1),
		mkTrade(6, 100, 0.5, 0.6, 1),
	}

	s := findShift(Detect(trades), domain.BiasPanicSell)
	if s == nil {
		t.Fatal("expected a Panic Sell shift")
	}
	if s.Trend != domain.TrendImproving {
		t.Errorf("expected IMPROVING, got %s", s.Trend)
	}
}

func TestDetect_SmallChangeIsStable(t *testing.T) {
	// 0.50 to 0.52 is +4%, inside the 5% deadband.
	trades := []domain.EnrichedTrade{
		mkTrade(1, 100, 0.50, 0.5, 1),
		mkTrade(2, -50, 0.50, 0.5, 1),
		mkTrade(3, 100, 0.50, 0.5, 1),
		mkTrade(4, 100, 0.52, 0.5, 1),
		mkTrade(5, -50, 0.52, 0.5, 1),
		mkTrade(6, 100, 0.52, 0.5, 1),
	}

	s := findShift(Detect(trades), domain.BiasFOMO)
	if s == nil {
		t.Fatal("expected a FOMO shift")
	}
	if s.Trend != domain.TrendStable {
		t.Errorf("expected STABLE, got %s", s.Trend)
	}
}

func TestDetect_RevengeFromZeroBaseline(t *testing.T) {
	// No revenge in the baseline, one in the recent window. The baseline
	// guard keeps the ratio finite and the trend reads WORSENING.
	trades := []domain.EnrichedTrade{
		mkTrade(1, 100, 0.5, 0.5, 1),
		mkTrade(2, -50, 0.5, 0.5, 1),
		mkTrade(3, 100, 0.5, 0.5, 1),
		mkTrade(4, 100, 0.5, 0.5, 1),
		mkTrade(5, -50, 0.5, 0.5, 1),
		mkTrade(6, 100, 0.5, 0.5, 1),
	}
	trades[5].IsRevenge = true

	s := findShift(Detect(trades), domain.BiasRevenge)
	if s == nil {
		t.Fatal("expected a Revenge Trading shift")
	}
	if s.Trend != domain.TrendWorsening {
		t.Errorf("expected WORSENING, got %s", s.Trend)
	}
	if s.BaselineValue != 0 {
		t.Errorf("expected zero baseline rate, got %f", s.BaselineValue)
	}
}

func TestDetect_DispositionSkippedWithoutBothSides(t *testing.T) {
	// Recent window is all winners: recent ratio is undefined, so the
	// disposition entry is omitted rather than reported as a change.
	trades := []domain.EnrichedTrade{
		mkTrade(1, 100, 0.5, 0.5, 1),
		mkTrade(2, -50, 0.5, 0.5, 3),
		mkTrade(3, 100, 0.5, 0.5, 1),
		mkTrade(4, 100, 0.5, 0.5, 1),
		mkTrade(5, 100, 0.5, 0.5, 1),
		mkTrade(6, 100, 0.5, 0.5, 1),
	}

	if s := findShift(Detect(trades), domain.BiasDisposition); s != nil {
		t.Errorf("expected no disposition shift, got %+v", s)
	}
}
