// Package main provides the analysis HTTP server:
// - POST /analyze: trade CSV in, full report JSON out, persisted to storage
// - POST /bars: daily OHLC CSV loaded into the bar store
// - GET /reports, /reports/{id}: persisted report summaries and payloads
// - GET /health, /metrics: liveness and Prometheus metrics
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/normalize"
	"trading-truth-lab/internal/observability"
	"trading-truth-lab/internal/pipeline"
	"trading-truth-lab/internal/reporting"
	"trading-truth-lab/internal/storage"
	chstore "trading-truth-lab/internal/storage/clickhouse"
	"trading-truth-lab/internal/storage/memory"
	"trading-truth-lab/internal/storage/migrations"
	pgstore "trading-truth-lab/internal/storage/postgres"
)

// Server holds the stores and analyzer behind the HTTP handlers.
type Server struct {
	analyzer *pipeline.Analyzer

	executionStore storage.ExecutionStore
	dayRangeStore  storage.DayRangeStore
	reportStore    storage.ReportStore

	logger zerolog.Logger
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	benchmark := flag.String("benchmark", envOr("BENCHMARK", pipeline.DefaultBenchmark), "Benchmark ticker for regime detection")
	parallel := flag.Int("parallel", pipeline.DefaultMaxParallelTickers, "Max tickers enriched in parallel")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx := context.Background()

	srv, cleanup, err := newServer(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *benchmark, *parallel, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/analyze", srv.handleAnalyze)
	mux.HandleFunc("/bars", srv.handleBars)
	mux.HandleFunc("/reports", srv.handleListReports)
	mux.HandleFunc("/reports/", srv.handleGetReport)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("shutdown complete")
}

// newServer wires stores and the analyzer for either storage mode.
func newServer(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, benchmark string, parallel int, logger zerolog.Logger) (*Server, func(), error) {
	srv := &Server{logger: logger}
	cleanup := func() {}

	if useMemory {
		srv.executionStore = memory.NewExecutionStore()
		srv.dayRangeStore = memory.NewDayRangeStore()
		srv.reportStore = memory.NewReportStore()
	} else {
		pgPool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pgPool); err != nil {
			pgPool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}

		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pgPool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}

		srv.executionStore = pgstore.NewExecutionStore(pgPool)
		srv.reportStore = pgstore.NewReportStore(pgPool)
		srv.dayRangeStore = chstore.NewDayRangeStore(chConn)
		cleanup = func() {
			pgPool.Close()
			chConn.Close()
		}
	}

	analyzer, err := pipeline.New(pipeline.Options{
		Source:             storage.NewBarSource(srv.dayRangeStore),
		Benchmark:          benchmark,
		MaxParallelTickers: parallel,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	srv.analyzer = analyzer

	return srv, cleanup, nil
}

// handleAnalyze runs the full pipeline on an uploaded trade CSV and persists
// the resulting report.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parsed, err := normalize.Read(r.Body)
	if err != nil {
		observability.RecordAnalysis("bad_input", 0)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	observability.DefaultMetrics.UploadsProcessed.Inc()
	observability.DefaultMetrics.RowsParsed.Add(float64(len(parsed.Executions) + len(parsed.Trades)))
	observability.RecordRowsDropped("malformed", parsed.DroppedRows)

	ctx := r.Context()

	// Keep the raw executions for audit; a persistence failure is not fatal
	// to the analysis itself.
	uploadID := newID("upload")
	if parsed.Format == normalize.FormatExecutionLog {
		if err := s.persistExecutions(ctx, uploadID, parsed); err != nil {
			s.logger.Warn().Err(err).Str("upload_id", uploadID).Msg("persist executions")
		}
	}

	start := time.Now()
	report, err := s.analyzer.AnalyzeInput(ctx, parsed)
	if err != nil {
		observability.RecordAnalysis("error", time.Since(start).Seconds())
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	observability.RecordAnalysis("ok", time.Since(start).Seconds())
	observability.RecordTradesAnalyzed(len(report.Trades))
	observability.DefaultMetrics.ReportsGenerated.Inc()

	wire := reporting.ToWire(report)
	payload, err := json.Marshal(wire)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reportID := newID("report")
	record := &storage.ReportRecord{
		ReportID:    reportID,
		GeneratedAt: report.GeneratedAt,
		TotalTrades: len(report.Trades),
		TruthScore:  report.Metrics.TruthScore,
		Payload:     payload,
	}
	if err := s.reportStore.Insert(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("report_id", reportID).Msg("persist report")
	} else {
		observability.DefaultMetrics.ReportsPersisted.Inc()
	}

	s.logger.Info().
		Str("report_id", reportID).
		Int("trades", len(report.Trades)).
		Int("truth_score", report.Metrics.TruthScore).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		ReportID string                `json:"report_id"`
		Report   *reporting.WireReport `json:"report"`
	}{ReportID: reportID, Report: wire})
}

// handleBars loads a daily OHLC CSV into the bar store.
func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bars, err := normalize.ReadBars(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.dayRangeStore.InsertBulk(r.Context(), bars); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			http.Error(w, "duplicate (ticker, day) bar", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Inserted int `json:"inserted"`
	}{Inserted: len(bars)})
}

// ReportSummary is one row of the /reports listing.
type ReportSummary struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TotalTrades int       `json:"total_trades"`
	TruthScore  int       `json:"truth_score"`
}

// handleListReports returns persisted report summaries, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.reportStore.List(r.Context(), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]ReportSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, ReportSummary{
			ReportID:    rec.ReportID,
			GeneratedAt: rec.GeneratedAt,
			TotalTrades: rec.TotalTrades,
			TruthScore:  rec.TruthScore,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// handleGetReport returns one persisted report payload by ID.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reportID := strings.TrimPrefix(r.URL.Path, "/reports/")
	if reportID == "" {
		http.Error(w, "report id required", http.StatusBadRequest)
		return
	}

	record, err := s.reportStore.GetByID(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(record.Payload)
}

// persistExecutions stores the raw fills of an execution-log upload.
func (s *Server) persistExecutions(ctx context.Context, uploadID string, parsed *normalize.Result) error {
	batch := make([]*domain.Execution, 0, len(parsed.Executions))
	for i := range parsed.Executions {
		batch = append(batch, &parsed.Executions[i])
	}
	return s.executionStore.InsertBulk(ctx, uploadID, batch)
}

// newID builds a random identifier with a type prefix.
func newID(prefix string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
