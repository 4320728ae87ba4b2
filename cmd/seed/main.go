// Package main generates deterministic demo datasets: a daily bars CSV and
// one paired trade CSV per trader persona, shaped so that each persona
// triggers the bias it is named after. Output feeds the analyze CLI and the
// server's /bars and /analyze endpoints.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trading-truth-lab/internal/domain"
)

var tickers = []string{"NVDA", "TSLA", "AAPL", "AMD", "MSFT", "AMZN", "META", "GOOGL"}

const benchmark = "SPY"

// persona shapes the generated trading behavior.
type persona struct {
	name        string
	fomoProb    float64
	panicProb   float64
	revengeProb float64
	holdMin     int
	holdMax     int
	winRate     float64
	disposition float64
}

var personas = []persona{
	{"strategist", 0.1, 0.1, 0.0, 5, 20, 0.65, 1.0},
	{"fomo_chaser", 0.9, 0.1, 0.0, 2, 5, 0.4, 1.0},
	{"panic_seller", 0.1, 0.9, 0.0, 1, 3, 0.35, 1.0},
	{"bag_holder", 0.2, 0.0, 0.0, 30, 100, 0.45, 3.0},
	{"gambler", 0.4, 0.4, 0.8, 1, 2, 0.3, 1.0},
	{"average_joe", 0.3, 0.3, 0.1, 3, 10, 0.5, 1.0},
}

func main() {
	outputDir := flag.String("output-dir", "testdata", "Output directory for generated CSV files")
	seed := flag.Int64("seed", 7, "Random seed")
	tradesPer := flag.Int("trades", 50, "Trades generated per persona")
	startDay := flag.String("start", "2022-05-02", "First bar day (yyyy-mm-dd)")
	days := flag.Int("days", 500, "Number of calendar days of bars")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	start := domain.DayOf(*startDay)
	if start.IsZero() {
		logger.Fatal().Str("start", *startDay).Msg("bad start day")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create output dir")
	}

	rng := rand.New(rand.NewSource(*seed))

	bars := generateBars(rng, start, *days)
	barsPath := filepath.Join(*outputDir, "bars.csv")
	if err := os.WriteFile(barsPath, []byte(renderBars(bars)), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write bars")
	}
	logger.Info().Str("path", barsPath).Int("bars", countBars(bars)).Msg("bars written")

	for _, p := range personas {
		trades := generateTrades(rng, p, bars, start, *days, *tradesPer)
		path := filepath.Join(*outputDir, fmt.Sprintf("trader_%s.csv", p.name))
		if err := os.WriteFile(path, []byte(renderTrades(trades)), 0o644); err != nil {
			logger.Fatal().Err(err).Str("persona", p.name).Msg("write trades")
		}
		logger.Info().Str("path", path).Int("trades", len(trades)).Msg("persona written")
	}
}

// generateBars builds a geometric random walk of weekday bars per ticker,
// plus the benchmark.
func generateBars(rng *rand.Rand, start time.Time, days int) map[string][]domain.DayRange {
	out := make(map[string][]domain.DayRange)
	for _, ticker := range append([]string{benchmark}, tickers...) {
		price := 50 + rng.Float64()*400
		drift := (rng.Float64() - 0.45) * 0.002
		var bars []domain.DayRange
		for d := 0; d < days; d++ {
			day := start.AddDate(0, 0, d)
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			price *= 1 + drift + (rng.Float64()-0.5)*0.04
			if price < 1 {
				price = 1
			}
			spread := price * (0.01 + rng.Float64()*0.03)
			low := price - spread*rng.Float64()
			high := low + spread
			bars = append(bars, domain.DayRange{
				Ticker: ticker,
				Day:    domain.DayKey(day),
				High:   high,
				Low:    low,
				Close:  low + (high-low)*rng.Float64(),
				Volume: 1e6 * (0.5 + rng.Float64()),
			})
		}
		out[ticker] = bars
	}
	return out
}

type seededTrade struct {
	ticker     string
	entryTime  time.Time
	entryPrice float64
	exitTime   time.Time
	exitPrice  float64
	qty        float64
}

// generateTrades plays one persona against the bars. Entries near the day
// high model FOMO, exits near the day low model panic, and losing exits can
// queue a quick re-entry in the same ticker to model revenge.
func generateTrades(rng *rand.Rand, p persona, bars map[string][]domain.DayRange, start time.Time, days, n int) []seededTrade {
	barIndex := make(map[string]map[string]domain.DayRange)
	for ticker, list := range bars {
		m := make(map[string]domain.DayRange, len(list))
		for _, b := range list {
			m[b.Day] = b
		}
		barIndex[ticker] = m
	}

	type revenge struct {
		ticker string
		after  time.Time
	}
	var queue []revenge
	var trades []seededTrade

	// Long holds can overshoot the bar history; bound the retries.
	for attempts := 0; len(trades) < n && attempts < n*200; attempts++ {
		var ticker string
		var entryDay time.Time
		if len(queue) > 0 {
			rv := queue[0]
			queue = queue[1:]
			ticker = rv.ticker
			entryDay = rv.after.Add(time.Duration(1+rng.Intn(20)) * time.Hour)
		} else {
			ticker = tickers[rng.Intn(len(tickers))]
			span := days - p.holdMax - 1
			if span < 1 {
				span = days
			}
			entryDay = start.AddDate(0, 0, rng.Intn(span))
		}

		entryBar, ok := barIndex[ticker][domain.DayKey(entryDay)]
		if !ok {
			entryDay = entryDay.AddDate(0, 0, 1+rng.Intn(3))
			if entryBar, ok = barIndex[ticker][domain.DayKey(entryDay)]; !ok {
				continue
			}
		}

		entryRange := entryBar.High - entryBar.Low
		var entryPrice float64
		if rng.Float64() < p.fomoProb {
			entryPrice = entryBar.Low + entryRange*(0.9+rng.Float64()*0.1)
		} else {
			entryPrice = entryBar.Low + entryRange*(0.3+rng.Float64()*0.4)
		}

		isWin := rng.Float64() < p.winRate
		hold := p.holdMin + rng.Intn(p.holdMax-p.holdMin+1)
		if isWin {
			hold = max(1, int(float64(hold)/max(1.0, p.disposition)))
		} else {
			hold = max(1, int(float64(hold)*max(1.0, p.disposition)))
		}

		exitDay := entryDay.AddDate(0, 0, hold)
		exitBar, ok := barIndex[ticker][domain.DayKey(exitDay)]
		for extra := 1; !ok && extra <= 3; extra++ {
			exitDay = exitDay.AddDate(0, 0, 1)
			exitBar, ok = barIndex[ticker][domain.DayKey(exitDay)]
		}
		if !ok {
			continue
		}

		exitRange := exitBar.High - exitBar.Low
		var exitPrice float64
		switch {
		case rng.Float64() < p.panicProb:
			exitPrice = exitBar.Low + exitRange*rng.Float64()*0.1
		case isWin:
			exitPrice = exitBar.Low + exitRange*(0.5+rng.Float64()*0.5)
		default:
			exitPrice = exitBar.Low + exitRange*rng.Float64()*0.5
		}

		entryTime := entryDay.Add(time.Duration(9+rng.Intn(7)) * time.Hour)
		exitTime := exitDay.Add(time.Duration(9+rng.Intn(7)) * time.Hour)
		if !exitTime.After(entryTime) {
			exitTime = entryTime.Add(time.Hour)
		}

		trades = append(trades, seededTrade{
			ticker:     ticker,
			entryTime:  entryTime,
			entryPrice: entryPrice,
			exitTime:   exitTime,
			exitPrice:  exitPrice,
			qty:        float64(1 + rng.Intn(100)),
		})

		if exitPrice < entryPrice && rng.Float64() < p.revengeProb {
			queue = append(queue, revenge{ticker: ticker, after: exitTime})
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].entryTime.Before(trades[j].entryTime)
	})
	return trades
}

func renderBars(bars map[string][]domain.DayRange) string {
	var sb strings.Builder
	sb.WriteString("ticker,day,high,low,close,volume\n")

	tickerList := make([]string, 0, len(bars))
	for ticker := range bars {
		tickerList = append(tickerList, ticker)
	}
	sort.Strings(tickerList)

	for _, ticker := range tickerList {
		for _, b := range bars[ticker] {
			sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%.0f\n",
				b.Ticker, b.Day, b.High, b.Low, b.Close, b.Volume))
		}
	}
	return sb.String()
}

func renderTrades(trades []seededTrade) string {
	var sb strings.Builder
	sb.WriteString("ticker,entry_date,entry_price,exit_date,exit_price,qty\n")
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%s,%.4f,%.0f\n",
			t.ticker,
			t.entryTime.Format("2006-01-02 15:04:05"),
			t.entryPrice,
			t.exitTime.Format("2006-01-02 15:04:05"),
			t.exitPrice,
			t.qty))
	}
	return sb.String()
}

func countBars(bars map[string][]domain.DayRange) int {
	n := 0
	for _, list := range bars {
		n += len(list)
	}
	return n
}
