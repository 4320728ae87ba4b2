package marketdata

import (
	"context"
	"testing"
	"time"

	"trading-truth-lab/internal/domain"
)

func bar(ticker, day string, high, low, close float64) domain.DayRange {
	return domain.DayRange{Ticker: ticker, Day: day, High: high, Low: low, Close: close}
}

func TestSnapshot_BarLookup(t *testing.T) {
	snap := NewSnapshot([]domain.DayRange{
		bar("AAPL", "2024-03-01", 11, 9, 10),
		bar("AAPL", "2024-03-04", 13, 11, 12),
	})

	b, ok := snap.Bar("AAPL", "2024-03-01")
	if !ok {
		t.Fatal("expected bar for 2024-03-01")
	}
	if b.High != 11 || b.Low != 9 {
		t.Errorf("unexpected bar %+v", b)
	}

	if _, ok := snap.Bar("AAPL", "2024-03-02"); ok {
		t.Error("expected no bar for 2024-03-02")
	}
	if _, ok := snap.Bar("MSFT", "2024-03-01"); ok {
		t.Error("expected no bar for other ticker")
	}
}

func TestSnapshot_DayBarsSkipsMissingDays(t *testing.T) {
	snap := NewSnapshot([]domain.DayRange{
		bar("AAPL", "2024-03-01", 11, 9, 10),
		bar("AAPL", "2024-03-04", 13, 11, 12), // weekend gap between
	})

	bars, err := snap.DayBars(context.Background(), "AAPL", "2024-03-01", "2024-03-05")
	if err != nil {
		t.Fatalf("DayBars failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Day != "2024-03-01" || bars[1].Day != "2024-03-04" {
		t.Errorf("expected ascending day order, got %s, %s", bars[0].Day, bars[1].Day)
	}
}

func TestSpansForTrades_PadsAndMerges(t *testing.T) {
	trades := []domain.MatchedTrade{
		{Ticker: "AAPL", EntryTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ExitTime: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{Ticker: "AAPL", EntryTime: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), ExitTime: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
	}

	spans := SpansForTrades(trades, "SPY")
	if len(spans) != 2 {
		t.Fatalf("expected spans for AAPL and SPY, got %d", len(spans))
	}

	aapl := spans[0]
	if aapl.Ticker != "AAPL" {
		t.Fatalf("expected AAPL first, got %s", aapl.Ticker)
	}
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -LookbackDays)
	if !aapl.From.Equal(wantFrom) {
		t.Errorf("expected lookback-padded from %v, got %v", wantFrom, aapl.From)
	}
	wantTo := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC).AddDate(0, 0, LookaheadDays)
	if !aapl.To.Equal(wantTo) {
		t.Errorf("expected lookahead-padded to %v, got %v", wantTo, aapl.To)
	}

	if spans[1].Ticker != "SPY" {
		t.Errorf("expected benchmark span, got %s", spans[1].Ticker)
	}
}

func TestPrefetch_BuildsSnapshotFromSource(t *testing.T) {
	source := NewSnapshot([]domain.DayRange{
		bar("AAPL", "2024-03-01", 11, 9, 10),
		bar("AAPL", "2024-03-04", 13, 11, 12),
	})

	spans := []Span{{
		Ticker: "AAPL",
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}}

	snap, err := Prefetch(context.Background(), source, spans)
	if err != nil {
		t.Fatalf("Prefetch failed: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("expected 2 bars in snapshot, got %d", snap.Len())
	}
}
