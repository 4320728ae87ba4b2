package enrich

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"trading-truth-lab/internal/domain"
)

const (
	// regimeSessions is the moving-average window for regime detection.
	regimeSessions = 20

	// regimeScanCalendarDays bounds the backward scan that collects the
	// benchmark sessions feeding the moving average.
	regimeScanCalendarDays = 45

	// regimeChangeSessions is the short momentum window: benchmark close
	// now vs this many sessions ago.
	regimeChangeSessions = 5

	// regimeChangeThreshold is the momentum band; inside it the market is
	// considered sideways.
	regimeChangeThreshold = 0.02
)

// regimeFor classifies the market regime of the session a trade was entered
// in, using the benchmark ticker's closes: above the 20-session average with
// positive momentum is BULL, below with negative momentum is BEAR, anything
// else SIDEWAYS. Without benchmark data the regime is UNKNOWN.
func (e *Enricher) regimeFor(entry time.Time) string {
	if e.benchmark == "" {
		return domain.RegimeUnknown
	}

	closes := e.benchmarkCloses(entry)
	n := len(closes)
	if n == 0 {
		return domain.RegimeUnknown
	}

	last := closes[n-1]
	maStart := n - regimeSessions
	if maStart < 0 {
		maStart = 0
	}
	ma := stat.Mean(closes[maStart:], nil)

	if n > regimeChangeSessions {
		prev := closes[n-1-regimeChangeSessions]
		if prev > 0 {
			change := (last - prev) / prev
			switch {
			case last > ma && change > regimeChangeThreshold:
				return domain.RegimeBull
			case last < ma && change < -regimeChangeThreshold:
				return domain.RegimeBear
			default:
				return domain.RegimeSideways
			}
		}
	}

	// Too little history for the momentum check: fall back to distance
	// from the moving average alone.
	switch {
	case last > ma*(1+regimeChangeThreshold):
		return domain.RegimeBull
	case last < ma*(1-regimeChangeThreshold):
		return domain.RegimeBear
	default:
		return domain.RegimeSideways
	}
}

// benchmarkCloses collects the benchmark's closes for the sessions leading
// up to and including the entry day, ascending.
func (e *Enricher) benchmarkCloses(entry time.Time) []float64 {
	day := domain.DayOf(domain.DayKey(entry))

	var closes []float64
	for i := regimeScanCalendarDays; i >= 0; i-- {
		bar, ok := e.snap.BarAt(e.benchmark, day.AddDate(0, 0, -i))
		if !ok || bar.Close <= 0 {
			continue
		}
		closes = append(closes, bar.Close)
	}
	return closes
}
