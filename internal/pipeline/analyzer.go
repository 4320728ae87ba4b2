// Package pipeline orchestrates one full analysis run: prefetch market
// data, match and enrich per ticker in parallel, then run the ordered
// cross-ticker passes and assemble the report.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"trading-truth-lab/internal/behavioral"
	"trading-truth-lab/internal/bias"
	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/enrich"
	"trading-truth-lab/internal/luck"
	"trading-truth-lab/internal/marketdata"
	"trading-truth-lab/internal/match"
	"trading-truth-lab/internal/normalize"
	"trading-truth-lab/internal/patterns"
	"trading-truth-lab/internal/shift"
)

// DefaultBenchmark is the index ticker used for market regime detection.
const DefaultBenchmark = "SPY"

// DefaultMaxParallelTickers bounds the per-ticker enrichment fan-out.
const DefaultMaxParallelTickers = 8

// Options configures an Analyzer.
type Options struct {
	// Source supplies daily bars. Required.
	Source marketdata.Source

	// Benchmark is the regime reference ticker. Defaults to DefaultBenchmark.
	Benchmark string

	// MaxParallelTickers bounds concurrent per-ticker enrichment.
	// Defaults to DefaultMaxParallelTickers.
	MaxParallelTickers int

	// Clock stamps reports. Defaults to time.Now.
	Clock func() time.Time
}

// Analyzer runs the behavioral analysis pipeline. Safe for concurrent use;
// each run builds its own snapshot and shares no mutable state.
type Analyzer struct {
	source    marketdata.Source
	benchmark string
	parallel  int
	clock     func() time.Time
}

// New creates an Analyzer from options.
func New(opts Options) (*Analyzer, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("pipeline: market data source is required")
	}
	if opts.Benchmark == "" {
		opts.Benchmark = DefaultBenchmark
	}
	if opts.MaxParallelTickers <= 0 {
		opts.MaxParallelTickers = DefaultMaxParallelTickers
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Analyzer{
		source:    opts.Source,
		benchmark: opts.Benchmark,
		parallel:  opts.MaxParallelTickers,
		clock:     opts.Clock,
	}, nil
}

// AnalyzeInput runs the pipeline on a normalized upload, routing execution
// logs through the matcher and paired rows straight to enrichment. The
// normalizer's drop counters are carried onto the report.
func (a *Analyzer) AnalyzeInput(ctx context.Context, in *normalize.Result) (*domain.Report, error) {
	var (
		report *domain.Report
		err    error
	)
	switch in.Format {
	case normalize.FormatExecutionLog:
		report, err = a.AnalyzeExecutions(ctx, in.Executions)
	case normalize.FormatPaired:
		report, err = a.AnalyzeTrades(ctx, in.Trades)
	default:
		return nil, fmt.Errorf("pipeline: unknown input format %q", in.Format)
	}
	if err != nil {
		return nil, err
	}
	report.DroppedRows = in.DroppedRows
	report.Warnings = append(report.Warnings, in.Warnings...)
	return report, nil
}

// AnalyzeExecutions matches an execution log into round trips and analyzes
// them. A FIFO underflow aborts the run.
func (a *Analyzer) AnalyzeExecutions(ctx context.Context, executions []domain.Execution) (*domain.Report, error) {
	matched, err := match.Match(executions)
	if err != nil {
		return nil, fmt.Errorf("pipeline: match executions: %w", err)
	}
	return a.AnalyzeTrades(ctx, matched)
}

// AnalyzeTrades analyzes already-matched round trips.
func (a *Analyzer) AnalyzeTrades(ctx context.Context, trades []domain.MatchedTrade) (*domain.Report, error) {
	snap, err := a.prefetch(ctx, trades)
	if err != nil {
		return nil, fmt.Errorf("pipeline: prefetch market data: %w", err)
	}

	enriched, err := a.enrichByTicker(ctx, trades, snap)
	if err != nil {
		return nil, err
	}

	// Cross-ticker passes need a single globally ordered view.
	enriched = behavioral.FlagRevenge(behavioral.SortByEntry(enriched))
	for i := range enriched {
		enriched[i].Decomposition = behavioral.Decompose(&enriched[i])
	}

	metrics := behavioral.Compute(enriched)
	metrics.Alpha = behavioral.Alpha(enriched, a.benchmarkCloses(snap, enriched))
	metrics.LuckPercentile = luck.Percentile(enriched)

	losses := bias.MapLosses(enriched)
	baseline := bias.Baseline(enriched, metrics)
	priority := bias.Prioritize(enriched, metrics, losses)
	shifts := shift.Detect(enriched)
	deep := patterns.Extract(enriched)
	playbook := patterns.Playbook(deep, priority, baseline, enriched)

	return &domain.Report{
		GeneratedAt:      a.clock().UTC(),
		Trades:           enriched,
		Metrics:          metrics,
		IsLowSample:      len(enriched) < behavioral.LowSampleSize,
		PersonalBaseline: baseline,
		BiasLossMapping:  losses,
		BiasPriority:     priority,
		BehaviorShift:    shifts,
		EquityCurve:      equityCurve(enriched),
		DeepPatterns:     deep,
		Playbook:         playbook,
	}, nil
}

// alphaPadDays extends the benchmark window on both sides of the trade
// span so the alpha comparison is not clipped to exact trade dates.
const alphaPadDays = 10

// benchmarkCloses collects the benchmark's closes across the padded trade
// span, ascending by day. Empty when there are no trades or no benchmark
// bars in the snapshot.
func (a *Analyzer) benchmarkCloses(snap *marketdata.Snapshot, trades []domain.EnrichedTrade) []float64 {
	if len(trades) == 0 || a.benchmark == "" {
		return nil
	}

	from, to := trades[0].EntryTime, trades[0].ExitTime
	for i := range trades[1:] {
		t := &trades[i+1]
		if t.EntryTime.Before(from) {
			from = t.EntryTime
		}
		if t.ExitTime.After(to) {
			to = t.ExitTime
		}
	}

	start := domain.DayOf(domain.DayKey(from)).AddDate(0, 0, -alphaPadDays)
	end := domain.DayOf(domain.DayKey(to)).AddDate(0, 0, alphaPadDays)

	var closes []float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if bar, ok := snap.BarAt(a.benchmark, d); ok && bar.Close > 0 {
			closes = append(closes, bar.Close)
		}
	}
	return closes
}

func (a *Analyzer) prefetch(ctx context.Context, trades []domain.MatchedTrade) (*marketdata.Snapshot, error) {
	spans := marketdata.SpansForTrades(trades, a.benchmark)
	return marketdata.Prefetch(ctx, a.source, spans)
}

// enrichByTicker fans enrichment out across tickers. The snapshot is
// immutable and the enricher is pure, so tickers share nothing mutable.
func (a *Analyzer) enrichByTicker(ctx context.Context, trades []domain.MatchedTrade, snap *marketdata.Snapshot) ([]domain.EnrichedTrade, error) {
	byTicker := map[string][]domain.MatchedTrade{}
	for _, t := range trades {
		byTicker[t.Ticker] = append(byTicker[t.Ticker], t)
	}
	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	enricher := enrich.New(snap, a.benchmark)
	results := make([][]domain.EnrichedTrade, len(tickers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallel)
	for i, ticker := range tickers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = enricher.EnrichAll(byTicker[ticker])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: enrich trades: %w", err)
	}

	var out []domain.EnrichedTrade
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// equityCurve is cumulative PnL in entry-time order, one point per trade.
func equityCurve(trades []domain.EnrichedTrade) []domain.EquityCurvePoint {
	if len(trades) == 0 {
		return nil
	}
	curve := make([]domain.EquityCurvePoint, 0, len(trades))
	var cum float64
	for i := range trades {
		t := &trades[i]
		cum += t.PnL
		p := domain.EquityCurvePoint{
			Date:          t.EntryTime,
			CumulativePnL: cum,
			IsRevenge:     t.IsRevenge,
			Ticker:        t.Ticker,
			PnL:           t.PnL,
			TradeID:       t.TradeID,
		}
		if t.HasScores() {
			fomo, panic := t.FomoScore, t.PanicScore
			p.FomoScore, p.PanicScore = &fomo, &panic
		}
		curve = append(curve, p)
	}
	return curve
}
