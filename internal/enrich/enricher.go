// Package enrich joins matched trades against day-level market context to
// produce behavioral positioning scores and excursion metrics.
package enrich

import (
	"math"
	"time"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/marketdata"
)

const (
	// rangeEpsilon guards zero-range days in the positioning formulas.
	rangeEpsilon = 1e-9

	// RegretHorizonSessions is the fixed forward window for post-exit
	// regret: the highest high of the next N available sessions.
	RegretHorizonSessions = 3

	// regretScanCalendarDays bounds the calendar scan used to find those
	// sessions across weekend/holiday gaps. The scan stops early when the
	// data simply ends; missing days are never treated as zero.
	regretScanCalendarDays = 7

	// volumeSessions is the moving-average window for volume weighting.
	volumeSessions = 20

	// volumeScanCalendarDays bounds the backward calendar scan that
	// collects those sessions.
	volumeScanCalendarDays = 40
)

// Enricher computes market-context fields for matched trades against a
// prefetched snapshot. It is stateless apart from the snapshot and safe for
// concurrent use across tickers.
type Enricher struct {
	snap      *marketdata.Snapshot
	benchmark string // regime benchmark ticker; empty disables regime detection
}

// New creates an Enricher over a snapshot. benchmark is the index ticker
// used for market-regime classification (e.g. "SPY"); pass "" to label all
// trades UNKNOWN.
func New(snap *marketdata.Snapshot, benchmark string) *Enricher {
	return &Enricher{snap: snap, benchmark: benchmark}
}

// Enrich computes all derived fields for one matched trade. IsRevenge is
// left false; it is assigned by the cross-trade pass in the behavioral
// package.
func (e *Enricher) Enrich(t domain.MatchedTrade) domain.EnrichedTrade {
	out := domain.EnrichedTrade{
		MatchedTrade:      t,
		PnL:               (t.ExitPrice - t.EntryPrice) * t.Quantity,
		FomoScore:         domain.SentinelScore,
		PanicScore:        domain.SentinelScore,
		FomoScoreBase:     domain.SentinelScore,
		PanicScoreBase:    domain.SentinelScore,
		MarketRegime:      e.regimeFor(t.EntryTime),
		VolumeWeightEntry: 1.0,
		VolumeWeightExit:  1.0,
	}
	if t.EntryPrice > 0 {
		out.ReturnPct = (t.ExitPrice - t.EntryPrice) / t.EntryPrice
	}
	if d := t.ExitTime.Sub(t.EntryTime); d > 0 {
		out.DurationDays = d.Hours() / 24
	}

	entryBar, okEntry := e.snap.BarAt(t.Ticker, t.EntryTime)
	exitBar, okExit := e.snap.BarAt(t.Ticker, t.ExitTime)
	if !okEntry || !okExit {
		// Missing market data: sentinel scores, zeroed excursions. The
		// trade still participates in PnL-based aggregates.
		return out
	}

	out.EntryDayHigh = entryBar.High
	out.EntryDayLow = entryBar.Low
	out.ExitDayHigh = exitBar.High
	out.ExitDayLow = exitBar.Low

	fomoBase := positionInRange(t.EntryPrice, entryBar.High, entryBar.Low)
	panicBase := positionInRange(t.ExitPrice, exitBar.High, exitBar.Low)
	out.FomoScoreBase = fomoBase
	out.PanicScoreBase = panicBase

	out.VolumeWeightEntry = e.volumeWeight(t.Ticker, t.EntryTime, entryBar.Volume)
	out.VolumeWeightExit = e.volumeWeight(t.Ticker, t.ExitTime, exitBar.Volume)

	// A volume spike sharpens an already-flagged score: chasing a high on
	// heavy volume is worse than on a quiet day, and so is dumping a low.
	out.FomoScore = fomoBase
	if fomoBase > 0.7 && out.VolumeWeightEntry > 1.0 {
		out.FomoScore = math.Min(1.0, fomoBase*out.VolumeWeightEntry)
	}
	out.PanicScore = panicBase
	if panicBase < 0.3 && out.VolumeWeightExit > 1.0 {
		out.PanicScore = math.Max(0.0, panicBase*(2.0-out.VolumeWeightExit))
	}

	out.MAE, out.MFE = e.excursions(t, entryBar)
	out.Efficiency = efficiency(t.EntryPrice, t.ExitPrice, out.MFE)
	out.Regret = e.regret(t)

	return out
}

// EnrichAll maps Enrich over a trade list, preserving order.
func (e *Enricher) EnrichAll(trades []domain.MatchedTrade) []domain.EnrichedTrade {
	out := make([]domain.EnrichedTrade, len(trades))
	for i, t := range trades {
		out[i] = e.Enrich(t)
	}
	return out
}

// positionInRange places a price inside a day's high-low range, clamped to
// [0,1]. Near 1 = at the high, near 0 = at the low.
func positionInRange(price, high, low float64) float64 {
	score := (price - low) / math.Max(high-low, rangeEpsilon)
	return math.Max(0.0, math.Min(1.0, score))
}

// excursions computes MAE/MFE as the worst/best excursion relative to entry
// across the holding window, scanned day-by-day. Days without bars are
// skipped; if the whole window is bare, the entry day's bar stands in.
func (e *Enricher) excursions(t domain.MatchedTrade, entryBar domain.DayRange) (mae, mfe float64) {
	if t.EntryPrice <= 0 {
		return 0, 0
	}

	minLow := entryBar.Low
	maxHigh := entryBar.High

	start := domain.DayOf(domain.DayKey(t.EntryTime))
	end := domain.DayOf(domain.DayKey(t.ExitTime))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		bar, ok := e.snap.BarAt(t.Ticker, d)
		if !ok {
			continue
		}
		if bar.Low < minLow {
			minLow = bar.Low
		}
		if bar.High > maxHigh {
			maxHigh = bar.High
		}
	}

	mae = (minLow - t.EntryPrice) / t.EntryPrice
	mfe = (maxHigh - t.EntryPrice) / t.EntryPrice
	return mae, mfe
}

// efficiency is the realized share of the maximum favorable move. Zero when
// the trade never saw a favorable move.
func efficiency(entryPrice, exitPrice, mfe float64) float64 {
	maxPotential := entryPrice * mfe
	if maxPotential <= 0 {
		return 0
	}
	return math.Max(0, (exitPrice-entryPrice)/maxPotential)
}

// regret is the profit left on the table: the highest high of the next
// RegretHorizonSessions available sessions above the exit price, times
// quantity. The forward scan stops when data runs out.
func (e *Enricher) regret(t domain.MatchedTrade) float64 {
	exitDay := domain.DayOf(domain.DayKey(t.ExitTime))

	var postMax float64
	sessions := 0
	for i := 1; i <= regretScanCalendarDays && sessions < RegretHorizonSessions; i++ {
		bar, ok := e.snap.BarAt(t.Ticker, exitDay.AddDate(0, 0, i))
		if !ok {
			continue
		}
		if bar.High > postMax {
			postMax = bar.High
		}
		sessions++
	}
	if sessions == 0 {
		return 0
	}
	return math.Max(0, postMax-t.ExitPrice) * t.Quantity
}

// volumeWeight grades a session's volume against the trailing 20-session
// average. Tiers: <2.5x normal, 2.5-5x spike (1.2), >=5x extreme (1.5).
// Degrades to 1.0 when volume history is incomplete.
func (e *Enricher) volumeWeight(ticker string, at time.Time, dayVolume float64) float64 {
	if dayVolume <= 0 {
		return 1.0
	}

	day := domain.DayOf(domain.DayKey(at))
	var sum float64
	sessions := 0
	for i := 0; i <= volumeScanCalendarDays && sessions < volumeSessions; i++ {
		bar, ok := e.snap.BarAt(ticker, day.AddDate(0, 0, -i))
		if !ok || bar.Volume <= 0 {
			continue
		}
		sum += bar.Volume
		sessions++
	}
	if sessions < volumeSessions {
		return 1.0
	}

	avg := sum / float64(sessions)
	if avg <= 0 {
		return 1.0
	}

	switch ratio := dayVolume / avg; {
	case ratio >= 5.0:
		return 1.5
	case ratio >= 2.5:
		return 1.2
	default:
		return 1.0
	}
}
