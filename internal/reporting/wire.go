// Package reporting renders an analysis report for external consumers:
// a snake_case JSON wire form, CSV trade export and a Markdown summary.
// Domain structs carry no serialization tags; the renaming lives here.
package reporting

import (
	"time"

	"trading-truth-lab/internal/domain"
)

// WireReport is the JSON shape of a full analysis report.
type WireReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Trades      []WireTrade `json:"trades"`
	Metrics     WireMetrics `json:"metrics"`
	IsLowSample bool        `json:"is_low_sample"`

	PersonalBaseline *WireBaseline    `json:"personal_baseline,omitempty"`
	BiasLossMapping  *WireLossMapping `json:"bias_loss_mapping,omitempty"`
	BiasPriority     []WirePriority   `json:"bias_priority,omitempty"`
	BehaviorShift    []WireShift      `json:"behavior_shift,omitempty"`

	EquityCurve  []WireCurvePoint `json:"equity_curve,omitempty"`
	DeepPatterns []WirePattern    `json:"deep_patterns,omitempty"`
	Playbook     *WirePlaybook    `json:"playbook,omitempty"`

	DroppedRows int      `json:"dropped_rows"`
	Warnings    []string `json:"warnings,omitempty"`
}

// WireTrade is one enriched round trip on the wire.
type WireTrade struct {
	TradeID    string  `json:"trade_id"`
	Ticker     string  `json:"ticker"`
	EntryDate  string  `json:"entry_date"`
	EntryPrice float64 `json:"entry_price"`
	ExitDate   string  `json:"exit_date"`
	ExitPrice  float64 `json:"exit_price"`
	Qty        float64 `json:"qty"`

	PnL          float64 `json:"pnl"`
	ReturnPct    float64 `json:"return_pct"`
	DurationDays float64 `json:"duration_days"`

	FomoScore  float64 `json:"fomo_score"`
	PanicScore float64 `json:"panic_score"`
	MAE        float64 `json:"mae"`
	MFE        float64 `json:"mfe"`
	Efficiency float64 `json:"efficiency"`
	Regret     float64 `json:"regret"`

	IsRevenge    bool   `json:"is_revenge"`
	MarketRegime string `json:"market_regime"`

	// Score decomposition, attached only to flagged trades.
	BaseScore       *float64 `json:"base_score,omitempty"`
	VolumeWeight    *float64 `json:"volume_weight,omitempty"`
	RegimeWeight    *float64 `json:"regime_weight,omitempty"`
	ContextualScore *float64 `json:"contextual_score,omitempty"`
}

// WireMetrics is the aggregate metric block on the wire.
type WireMetrics struct {
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`

	FomoIndex           float64 `json:"fomo_index"`
	PanicIndex          float64 `json:"panic_index"`
	DispositionRatio    float64 `json:"disposition_ratio"`
	RevengeTradingCount int     `json:"revenge_trading_count"`

	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	Alpha          float64 `json:"alpha"`
	LuckPercentile float64 `json:"luck_percentile"`
	TotalRegret    float64 `json:"total_regret"`

	TruthScore int `json:"truth_score"`
}

// WireBaseline mirrors domain.PersonalBaseline.
type WireBaseline struct {
	AvgFomo             float64 `json:"avg_fomo"`
	AvgPanic            float64 `json:"avg_panic"`
	AvgMAE              float64 `json:"avg_mae"`
	AvgDispositionRatio float64 `json:"avg_disposition_ratio"`
	AvgRevengeCount     float64 `json:"avg_revenge_count"`
}

// WireLossMapping mirrors domain.BiasLossMapping.
type WireLossMapping struct {
	FomoLoss        float64 `json:"fomo_loss"`
	PanicLoss       float64 `json:"panic_loss"`
	RevengeLoss     float64 `json:"revenge_loss"`
	DispositionLoss float64 `json:"disposition_loss"`
}

// WirePriority mirrors domain.BiasPriority.
type WirePriority struct {
	Bias          string  `json:"bias"`
	Priority      int     `json:"priority"`
	FinancialLoss float64 `json:"financial_loss"`
	Frequency     float64 `json:"frequency"`
	Severity      float64 `json:"severity"`
}

// WireShift mirrors domain.BehaviorShift.
type WireShift struct {
	Bias          string  `json:"bias"`
	RecentValue   float64 `json:"recent_value"`
	BaselineValue float64 `json:"baseline_value"`
	ChangePercent float64 `json:"change_percent"`
	Trend         string  `json:"trend"`
}

// WireCurvePoint mirrors domain.EquityCurvePoint.
type WireCurvePoint struct {
	Date          string   `json:"date"`
	CumulativePnL float64  `json:"cumulative_pnl"`
	FomoScore     *float64 `json:"fomo_score,omitempty"`
	PanicScore    *float64 `json:"panic_score,omitempty"`
	IsRevenge     bool     `json:"is_revenge"`
	Ticker        string   `json:"ticker"`
	PnL           float64  `json:"pnl"`
	TradeID       string   `json:"trade_id"`
}

// WirePattern mirrors domain.DeepPattern.
type WirePattern struct {
	Type         string             `json:"type"`
	Description  string             `json:"description"`
	Significance string             `json:"significance"`
	Metadata     map[string]float64 `json:"metadata,omitempty"`
}

// WirePlaybook mirrors domain.PersonalPlaybook.
type WirePlaybook struct {
	Rules         []string `json:"rules"`
	BasedOnBiases []string `json:"based_on_biases"`
}

// wireTimeLayout is the timestamp format used in trade rows.
const wireTimeLayout = "2006-01-02 15:04:05"

// ToWire converts a domain report into its wire form.
func ToWire(r *domain.Report) *WireReport {
	w := &WireReport{
		GeneratedAt: r.GeneratedAt,
		Trades:      make([]WireTrade, 0, len(r.Trades)),
		Metrics:     toWireMetrics(r.Metrics),
		IsLowSample: r.IsLowSample,
		DroppedRows: r.DroppedRows,
		Warnings:    r.Warnings,
	}

	for i := range r.Trades {
		w.Trades = append(w.Trades, toWireTrade(&r.Trades[i]))
	}

	if r.PersonalBaseline != nil {
		w.PersonalBaseline = &WireBaseline{
			AvgFomo:             r.PersonalBaseline.AvgFomo,
			AvgPanic:            r.PersonalBaseline.AvgPanic,
			AvgMAE:              r.PersonalBaseline.AvgMAE,
			AvgDispositionRatio: r.PersonalBaseline.AvgDispositionRatio,
			AvgRevengeCount:     r.PersonalBaseline.AvgRevengeCount,
		}
	}
	if r.BiasLossMapping != nil {
		w.BiasLossMapping = &WireLossMapping{
			FomoLoss:        r.BiasLossMapping.FomoLoss,
			PanicLoss:       r.BiasLossMapping.PanicLoss,
			RevengeLoss:     r.BiasLossMapping.RevengeLoss,
			DispositionLoss: r.BiasLossMapping.DispositionLoss,
		}
	}
	for _, p := range r.BiasPriority {
		w.BiasPriority = append(w.BiasPriority, WirePriority{
			Bias:          p.Bias,
			Priority:      p.Priority,
			FinancialLoss: p.FinancialLoss,
			Frequency:     p.Frequency,
			Severity:      p.Severity,
		})
	}
	for _, s := range r.BehaviorShift {
		w.BehaviorShift = append(w.BehaviorShift, WireShift{
			Bias:          s.Bias,
			RecentValue:   s.RecentValue,
			BaselineValue: s.BaselineValue,
			ChangePercent: s.ChangePercent,
			Trend:         s.Trend,
		})
	}
	for _, p := range r.EquityCurve {
		w.EquityCurve = append(w.EquityCurve, WireCurvePoint{
			Date:          p.Date.UTC().Format(wireTimeLayout),
			CumulativePnL: p.CumulativePnL,
			FomoScore:     p.FomoScore,
			PanicScore:    p.PanicScore,
			IsRevenge:     p.IsRevenge,
			Ticker:        p.Ticker,
			PnL:           p.PnL,
			TradeID:       p.TradeID,
		})
	}
	for _, p := range r.DeepPatterns {
		w.DeepPatterns = append(w.DeepPatterns, WirePattern{
			Type:         p.Type,
			Description:  p.Description,
			Significance: p.Significance,
			Metadata:     p.Metadata,
		})
	}
	if r.Playbook != nil {
		w.Playbook = &WirePlaybook{
			Rules:         r.Playbook.Rules,
			BasedOnBiases: r.Playbook.BasedOnBiases,
		}
	}
	return w
}

func toWireTrade(t *domain.EnrichedTrade) WireTrade {
	w := WireTrade{
		TradeID:      t.TradeID,
		Ticker:       t.Ticker,
		EntryDate:    t.EntryTime.UTC().Format(wireTimeLayout),
		EntryPrice:   t.EntryPrice,
		ExitDate:     t.ExitTime.UTC().Format(wireTimeLayout),
		ExitPrice:    t.ExitPrice,
		Qty:          t.Quantity,
		PnL:          t.PnL,
		ReturnPct:    t.ReturnPct,
		DurationDays: t.DurationDays,
		FomoScore:    t.FomoScore,
		PanicScore:   t.PanicScore,
		MAE:          t.MAE,
		MFE:          t.MFE,
		Efficiency:   t.Efficiency,
		Regret:       t.Regret,
		IsRevenge:    t.IsRevenge,
		MarketRegime: t.MarketRegime,
	}
	if d := t.Decomposition; d != nil {
		base, vol, regime, contextual := d.BaseScore, d.VolumeWeight, d.RegimeWeight, d.ContextualScore
		w.BaseScore = &base
		w.VolumeWeight = &vol
		w.RegimeWeight = &regime
		w.ContextualScore = &contextual
	}
	return w
}

func toWireMetrics(m domain.BehavioralMetrics) WireMetrics {
	return WireMetrics{
		TotalTrades:         m.TotalTrades,
		WinRate:             m.WinRate,
		ProfitFactor:        m.ProfitFactor,
		FomoIndex:           m.FomoIndex,
		PanicIndex:          m.PanicIndex,
		DispositionRatio:    m.DispositionRatio,
		RevengeTradingCount: m.RevengeTradingCount,
		SharpeRatio:         m.SharpeRatio,
		SortinoRatio:        m.SortinoRatio,
		Alpha:               m.Alpha,
		LuckPercentile:      m.LuckPercentile,
		TotalRegret:         m.TotalRegret,
		TruthScore:          m.TruthScore,
	}
}
