package reporting

import (
	"fmt"
	"strings"
	"time"

	"trading-truth-lab/internal/domain"
)

// RenderMarkdown renders a report as a Markdown summary.
func RenderMarkdown(r *domain.Report) string {
	var sb strings.Builder

	sb.WriteString("# Trading Truth Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.IsLowSample {
		sb.WriteString("**Low sample:** fewer than 5 trades; luck and Sharpe terms use neutral defaults.\n\n")
	}

	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Truth Score | %d |\n", r.Metrics.TruthScore))
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.Metrics.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.1f%% |\n", r.Metrics.WinRate*100))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.2f |\n", r.Metrics.ProfitFactor))
	sb.WriteString(fmt.Sprintf("| FOMO Index | %.3f |\n", r.Metrics.FomoIndex))
	sb.WriteString(fmt.Sprintf("| Panic Index | %.3f |\n", r.Metrics.PanicIndex))
	sb.WriteString(fmt.Sprintf("| Disposition Ratio | %.2f |\n", r.Metrics.DispositionRatio))
	sb.WriteString(fmt.Sprintf("| Revenge Trades | %d |\n", r.Metrics.RevengeTradingCount))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.3f |\n", r.Metrics.SharpeRatio))
	sb.WriteString(fmt.Sprintf("| Sortino Ratio | %.3f |\n", r.Metrics.SortinoRatio))
	sb.WriteString(fmt.Sprintf("| Alpha | %.3f |\n", r.Metrics.Alpha))
	sb.WriteString(fmt.Sprintf("| Luck Percentile | %.1f |\n", r.Metrics.LuckPercentile))
	sb.WriteString(fmt.Sprintf("| Total Regret | %.2f |\n", r.Metrics.TotalRegret))
	sb.WriteString("\n")

	if r.BiasLossMapping != nil {
		sb.WriteString("## Bias Loss Mapping\n\n")
		sb.WriteString("| Bias | Attributed Loss |\n")
		sb.WriteString("|------|----------------|\n")
		sb.WriteString(fmt.Sprintf("| FOMO | %.2f |\n", r.BiasLossMapping.FomoLoss))
		sb.WriteString(fmt.Sprintf("| Panic Sell | %.2f |\n", r.BiasLossMapping.PanicLoss))
		sb.WriteString(fmt.Sprintf("| Revenge Trading | %.2f |\n", r.BiasLossMapping.RevengeLoss))
		sb.WriteString(fmt.Sprintf("| Disposition Effect | %.2f |\n", r.BiasLossMapping.DispositionLoss))
		sb.WriteString("\n")
	}

	if len(r.BiasPriority) > 0 {
		sb.WriteString("## Bias Priorities\n\n")
		sb.WriteString("| Priority | Bias | Loss | Frequency | Severity |\n")
		sb.WriteString("|----------|------|------|-----------|----------|\n")
		for _, p := range r.BiasPriority {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.0f%% | %.0f%% |\n",
				p.Priority, p.Bias, p.FinancialLoss, p.Frequency*100, p.Severity*100))
		}
		sb.WriteString("\n")
	}

	if len(r.BehaviorShift) > 0 {
		sb.WriteString("## Behavior Shift\n\n")
		sb.WriteString("| Bias | Baseline | Recent | Change | Trend |\n")
		sb.WriteString("|------|----------|--------|--------|-------|\n")
		for _, s := range r.BehaviorShift {
			sb.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %+.1f%% | %s |\n",
				s.Bias, s.BaselineValue, s.RecentValue, s.ChangePercent, s.Trend))
		}
		sb.WriteString("\n")
	}

	if len(r.DeepPatterns) > 0 {
		sb.WriteString("## Deep Patterns\n\n")
		for _, p := range r.DeepPatterns {
			sb.WriteString(fmt.Sprintf("- **[%s]** (%s) %s\n", p.Type, p.Significance, p.Description))
		}
		sb.WriteString("\n")
	}

	if r.Playbook != nil && len(r.Playbook.Rules) > 0 {
		sb.WriteString("## Personal Playbook\n\n")
		for _, rule := range r.Playbook.Rules {
			sb.WriteString(fmt.Sprintf("- %s\n", rule))
		}
		sb.WriteString("\n")
	}

	if r.DroppedRows > 0 {
		sb.WriteString(fmt.Sprintf("## Input Warnings\n\n%d rows dropped during parsing.\n\n", r.DroppedRows))
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return sb.String()
}
