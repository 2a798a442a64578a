package stats

import (
	"testing"
	"time"

	"familyassets/internal/core"
)

func TestDistributionSkipsNonPositive(t *testing.T) {
	totals := ComputeTotals([]core.Asset{
		asset("a", core.Cash, "300", core.NewDate(2024, 1, 1)),
		asset("b", core.Bank, "100", core.NewDate(2024, 1, 1)),
		asset("c", core.Vehicle, "-20", core.NewDate(2024, 1, 1)),
	})
	slices := Distribution(totals)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Category != core.Cash || slices[0].Color != "#CAF4F7" || !slices[0].Percent.Equal(dec("75")) {
		t.Fatalf("unexpected first slice %+v", slices[0])
	}
	if slices[1].Category != core.Bank || !slices[1].Percent.Equal(dec("25")) {
		t.Fatalf("unexpected second slice %+v", slices[1])
	}
}

func TestDistributionEmpty(t *testing.T) {
	if got := Distribution(ComputeTotals(nil)); len(got) != 0 {
		t.Fatalf("expected no slices, got %d", len(got))
	}
}

func TestCategoryBarsKeepsEveryCategory(t *testing.T) {
	bars := CategoryBars(ComputeTotals(sampleAssets()))
	if len(bars) != 8 {
		t.Fatalf("expected 8 bars, got %d", len(bars))
	}
	if bars[1].Category != core.Bank || !bars[1].Value.Equal(dec("115000")) {
		t.Fatalf("unexpected bank bar %+v", bars[1])
	}
	if !bars[4].Value.IsZero() {
		t.Fatalf("vehicle bar should be zero, got %s", bars[4].Value)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize(sampleAssets(), now, 3)
	if len(s.Series) != 3 || len(s.Trend.Labels) != 3 || len(s.Trend.Values) != 3 {
		t.Fatalf("unexpected series length %d", len(s.Series))
	}
	if s.Trend.Labels[2] != "2024-06" {
		t.Fatalf("last label %s", s.Trend.Labels[2])
	}
	if !s.Trend.Values[2].Equal(s.Totals.Total) {
		t.Fatalf("every sample asset predates June, expected %s got %s", s.Totals.Total, s.Trend.Values[2])
	}
	if s.Extremes.Count != 5 {
		t.Fatalf("count %d", s.Extremes.Count)
	}
}
