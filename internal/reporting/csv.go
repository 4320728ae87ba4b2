package reporting

import (
	"fmt"
	"strings"

	"trading-truth-lab/internal/domain"
)

// RenderCSV renders enriched trades as a CSV string, one row per trade.
func RenderCSV(trades []domain.EnrichedTrade) string {
	var sb strings.Builder

	sb.WriteString("trade_id,ticker,entry_date,entry_price,exit_date,exit_price,qty,")
	sb.WriteString("pnl,return_pct,duration_days,")
	sb.WriteString("fomo_score,panic_score,mae,mfe,efficiency,regret,")
	sb.WriteString("is_revenge,market_regime\n")

	for i := range trades {
		t := &trades[i]
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%t,%s\n",
			t.TradeID,
			t.Ticker,
			t.EntryTime.UTC().Format(wireTimeLayout),
			t.EntryPrice,
			t.ExitTime.UTC().Format(wireTimeLayout),
			t.ExitPrice,
			t.Quantity,
			t.PnL,
			t.ReturnPct,
			t.DurationDays,
			t.FomoScore,
			t.PanicScore,
			t.MAE,
			t.MFE,
			t.Efficiency,
			t.Regret,
			t.IsRevenge,
			t.MarketRegime,
		))
	}

	return sb.String()
}
