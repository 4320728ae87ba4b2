package behavioral

import (
	"math"
	"testing"

	"trading-truth-lab/internal/domain"
)

func TestRegimeWeight(t *testing.T) {
	cases := []struct {
		name   string
		regime string
		fomo   float64
		panic  float64
		want   float64
	}{
		{"panic sell in bull market", domain.RegimeBull, 0.5, 0.2, 1.5},
		{"fomo buy in bull market", domain.RegimeBull, 0.8, 0.5, 0.8},
		{"calm trade in bull market", domain.RegimeBull, 0.5, 0.5, 1.0},
		{"fomo buy in bear market", domain.RegimeBear, 0.8, 0.5, 1.5},
		{"panic sell in bear market", domain.RegimeBear, 0.5, 0.2, 1.0},
		{"sideways market", domain.RegimeSideways, 0.9, 0.1, 1.0},
		{"unknown regime", domain.RegimeUnknown, 0.9, 0.1, 1.0},
		{"sentinel scores never flag", domain.RegimeBull, domain.SentinelScore, domain.SentinelScore, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RegimeWeight(c.regime, c.fomo, c.panic); got != c.want {
				t.Errorf("expected weight %v, got %v", c.want, got)
			}
		})
	}
}

func TestDecompose_NilForCalmTrade(t *testing.T) {
	tr := enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.5, 0.5)
	tr.FomoScoreBase = 0.5
	tr.PanicScoreBase = 0.5
	tr.VolumeWeightEntry = 1.0
	tr.VolumeWeightExit = 1.0

	if d := Decompose(&tr); d != nil {
		t.Errorf("expected no decomposition for a calm trade, got %+v", d)
	}
}

func TestDecompose_PanicSellInBullMarket(t *testing.T) {
	tr := enriched("a", "AAPL", at(1, 0), at(2, 0), -100, 0.5, 0.2)
	tr.FomoScoreBase = 0.5
	tr.PanicScoreBase = 0.2
	tr.VolumeWeightEntry = 1.0
	tr.VolumeWeightExit = 1.2
	tr.MarketRegime = domain.RegimeBull

	d := Decompose(&tr)
	if d == nil {
		t.Fatal("expected a decomposition for a panic sell")
	}
	// 100 - 0.5*20 fomo - (1-0.2)*20 panic = 74.
	if math.Abs(d.BaseScore-74) > 1e-9 {
		t.Errorf("expected base score 74, got %f", d.BaseScore)
	}
	if d.VolumeWeight != 1.2 {
		t.Errorf("expected the worse volume weight 1.2, got %f", d.VolumeWeight)
	}
	if d.RegimeWeight != 1.5 {
		t.Errorf("expected regime weight 1.5, got %f", d.RegimeWeight)
	}
	if math.Abs(d.ContextualScore-74*1.2*1.5) > 1e-9 {
		t.Errorf("expected contextual score %f, got %f", 74*1.2*1.5, d.ContextualScore)
	}
}

func TestDecompose_RevengeWithSentinelScores(t *testing.T) {
	tr := enriched("a", "AAPL", at(1, 0), at(2, 0), -100, domain.SentinelScore, domain.SentinelScore)
	tr.FomoScoreBase = domain.SentinelScore
	tr.PanicScoreBase = domain.SentinelScore
	tr.VolumeWeightEntry = 1.0
	tr.VolumeWeightExit = 1.0
	tr.IsRevenge = true

	d := Decompose(&tr)
	if d == nil {
		t.Fatal("expected a decomposition for a revenge trade")
	}
	// Sentinel scores contribute no penalty.
	if d.BaseScore != 100 || d.ContextualScore != 100 {
		t.Errorf("expected neutral 100/100, got base %f contextual %f", d.BaseScore, d.ContextualScore)
	}
}

func TestDecompose_ContextualScoreCapped(t *testing.T) {
	tr := enriched("a", "AAPL", at(1, 0), at(2, 0), -100, domain.SentinelScore, 0.3)
	tr.FomoScoreBase = domain.SentinelScore
	tr.PanicScoreBase = 0.95
	tr.VolumeWeightEntry = 1.0
	tr.VolumeWeightExit = 1.5
	tr.MarketRegime = domain.RegimeBull

	d := Decompose(&tr)
	if d == nil {
		t.Fatal("expected a decomposition")
	}
	// 99 * 1.5 * 1.5 = 222.75 before the cap.
	if d.ContextualScore != 150 {
		t.Errorf("expected contextual score capped at 150, got %f", d.ContextualScore)
	}
}

func TestAlpha(t *testing.T) {
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.5, 0.5),
		enriched("b", "AAPL", at(3, 0), at(4, 0), 100, 0.5, 0.5),
		enriched("c", "MSFT", at(5, 0), at(6, 0), 100, 0.5, 0.5),
	}
	// Three trades at +0.1 each against a benchmark that gained 10%.
	got := Alpha(trades, []float64{100, 104, 110})
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("expected alpha 0.2, got %f", got)
	}
}

func TestAlpha_DegenerateInputs(t *testing.T) {
	trades := []domain.EnrichedTrade{
		enriched("a", "AAPL", at(1, 0), at(2, 0), 100, 0.5, 0.5),
	}
	if got := Alpha(nil, []float64{100, 110}); got != 0 {
		t.Errorf("expected 0 for no trades, got %f", got)
	}
	if got := Alpha(trades, nil); got != 0 {
		t.Errorf("expected 0 without benchmark closes, got %f", got)
	}
	if got := Alpha(trades, []float64{0, 110}); got != 0 {
		t.Errorf("expected 0 for a non-positive first close, got %f", got)
	}
}
