// Package main provides the one-shot analysis CLI: read a trade CSV,
// optionally a daily bars CSV for market context, run the full pipeline
// and render the report as JSON, markdown or a per-trade CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/marketdata"
	"trading-truth-lab/internal/normalize"
	"trading-truth-lab/internal/pipeline"
	"trading-truth-lab/internal/reporting"
	"trading-truth-lab/internal/storage"
	"trading-truth-lab/internal/storage/memory"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	input := flag.String("input", "", "Trade CSV file (execution log or paired format), '-' for stdin")
	barsFile := flag.String("bars", os.Getenv("BARS_FILE"), "Daily OHLC bars CSV for market context (optional)")
	benchmark := flag.String("benchmark", envOr("BENCHMARK", pipeline.DefaultBenchmark), "Benchmark ticker for regime detection")
	format := flag.String("format", "json", "Output format: json, markdown or csv")
	output := flag.String("output", "", "Output file (default stdout)")
	parallel := flag.Int("parallel", pipeline.DefaultMaxParallelTickers, "Max tickers enriched in parallel")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *input == "" {
		logger.Fatal().Msg("--input is required")
	}

	ctx := context.Background()

	source, err := buildSource(*barsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("load bars")
	}

	analyzer, err := pipeline.New(pipeline.Options{
		Source:             source,
		Benchmark:          *benchmark,
		MaxParallelTickers: *parallel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create analyzer")
	}

	parsed, err := readInput(*input)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse input")
	}
	logger.Info().
		Str("format", string(parsed.Format)).
		Int("executions", len(parsed.Executions)).
		Int("trades", len(parsed.Trades)).
		Int("dropped_rows", parsed.DroppedRows).
		Msg("input parsed")

	start := time.Now()
	report, err := analyzer.AnalyzeInput(ctx, parsed)
	if err != nil {
		logger.Fatal().Err(err).Msg("analysis failed")
	}
	logger.Info().
		Int("trades", len(report.Trades)).
		Int("truth_score", report.Metrics.TruthScore).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	rendered, err := render(*format, report)
	if err != nil {
		logger.Fatal().Err(err).Msg("render report")
	}

	if err := writeOutput(*output, rendered); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
}

// buildSource loads bars into an in-memory store, or returns an empty
// snapshot when no bars file is given (all trades get sentinel scores).
func buildSource(barsFile string) (marketdata.Source, error) {
	if barsFile == "" {
		return marketdata.NewSnapshot(nil), nil
	}

	f, err := os.Open(barsFile)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	bars, err := normalize.ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}

	store := memory.NewDayRangeStore()
	if err := store.InsertBulk(context.Background(), bars); err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return storage.NewBarSource(store), nil
}

func readInput(path string) (*normalize.Result, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return normalize.Read(r)
}

func render(format string, report *domain.Report) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(reporting.ToWire(report), "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		return string(data) + "\n", nil
	case "markdown":
		return reporting.RenderMarkdown(report), nil
	case "csv":
		return reporting.RenderCSV(report.Trades), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
