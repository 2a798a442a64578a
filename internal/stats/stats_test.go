package stats

import (
	"testing"
	"time"

	"familyassets/internal/core"
	"familyassets/internal/store"

	"github.com/shopspring/decimal"
)

func asset(id string, c core.Category, amount string, date core.Date) core.Asset {
	return core.Asset{ID: id, Name: id, Type: c, Amount: decimal.RequireFromString(amount), Date: date}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalsScenario(t *testing.T) {
	assets := []core.Asset{
		asset("1", core.Cash, "8000", core.NewDate(2024, 1, 1)),
		asset("2", core.Bank, "120000", core.NewDate(2024, 1, 1)),
		asset("3", core.Bank, "-5000", core.NewDate(2024, 3, 1)),
	}
	got := ComputeTotals(assets)
	if !got.Of(core.Cash).Equal(dec("8000")) {
		t.Fatalf("cash: %s", got.Of(core.Cash))
	}
	if !got.Of(core.Bank).Equal(dec("115000")) {
		t.Fatalf("bank: %s", got.Of(core.Bank))
	}
	if !got.Total.Equal(dec("123000")) {
		t.Fatalf("total: %s", got.Total)
	}
	for _, c := range []core.Category{core.Investment, core.Property, core.Vehicle, core.Jewelry, core.Antique, core.Other} {
		if !got.Of(c).IsZero() {
			t.Fatalf("%s should be zero, got %s", c, got.Of(c))
		}
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil)
	if len(got.ByCategory) != len(core.Categories()) {
		t.Fatalf("expected every category present, got %d", len(got.ByCategory))
	}
	for c, v := range got.ByCategory {
		if !v.IsZero() {
			t.Fatalf("%s should be zero, got %s", c, v)
		}
	}
	if !got.Total.IsZero() {
		t.Fatalf("total should be zero, got %s", got.Total)
	}
}

func TestComputeTotalsCategorySumEqualsTotal(t *testing.T) {
	collections := [][]core.Asset{
		sampleAssets(),
		{asset("a", core.Category("crypto"), "12.5", core.NewDate(2024, 1, 1))},
		{asset("a", core.Vehicle, "-1", core.NewDate(2024, 1, 1)), asset("b", core.Vehicle, "1", core.NewDate(2024, 1, 1))},
	}
	for i, assets := range collections {
		got := ComputeTotals(assets)
		sum := decimal.Zero
		for _, v := range got.ByCategory {
			sum = sum.Add(v)
		}
		if !sum.Equal(got.Total) {
			t.Fatalf("case %d: category sum %s != total %s", i, sum, got.Total)
		}
	}
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	assets := sampleAssets()
	a, b := ComputeTotals(assets), ComputeTotals(assets)
	if !a.Total.Equal(b.Total) {
		t.Fatalf("totals differ: %s vs %s", a.Total, b.Total)
	}
}

func TestUnknownCategoryCountsAsOther(t *testing.T) {
	got := ComputeTotals([]core.Asset{asset("a", core.Category("crypto"), "10", core.NewDate(2024, 1, 1))})
	if !got.Of(core.Other).Equal(dec("10")) {
		t.Fatalf("other: %s", got.Of(core.Other))
	}
}

func TestMonthlySeriesCumulative(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	assets := []core.Asset{
		asset("old", core.Property, "1000", core.NewDate(2023, 5, 1)),
		asset("jan", core.Cash, "100", core.NewDate(2024, 1, 1)),  // counts from Jan
		asset("jan2", core.Cash, "10", core.NewDate(2024, 1, 2)),  // counts from Feb
		asset("mar", core.Bank, "-50", core.NewDate(2024, 3, 10)), // after every boundary
	}
	series := MonthlySeries(assets, now, 6)
	want := []struct {
		label string
		total string
	}{
		{"2023-10", "1000"},
		{"2023-11", "1000"},
		{"2023-12", "1000"},
		{"2024-01", "1100"},
		{"2024-02", "1110"},
		{"2024-03", "1110"},
	}
	if len(series) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(series))
	}
	for i, w := range want {
		if series[i].Label() != w.label || !series[i].Total.Equal(dec(w.total)) {
			t.Fatalf("point %d: expected %s=%s, got %s=%s", i, w.label, w.total, series[i].Label(), series[i].Total)
		}
	}
}

func TestMonthlySeriesEmptyAndDefault(t *testing.T) {
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	series := MonthlySeries(nil, now, 0)
	if len(series) != DefaultTrendMonths {
		t.Fatalf("expected default window, got %d", len(series))
	}
	for _, p := range series {
		if !p.Total.IsZero() {
			t.Fatalf("%s should be zero", p.Label())
		}
	}
	if series[0].Label() != "2023-08" || series[5].Label() != "2024-01" {
		t.Fatalf("unexpected window %s..%s", series[0].Label(), series[5].Label())
	}
}

func TestComputeExtremes(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		e := ComputeExtremes(nil)
		if e.Count != 0 || !e.Average.IsZero() || !e.Max.IsZero() || !e.Min.IsZero() {
			t.Fatalf("unexpected %+v", e)
		}
	})
	t.Run("single", func(t *testing.T) {
		e := ComputeExtremes([]core.Asset{asset("a", core.Cash, "-42.5", core.NewDate(2024, 1, 1))})
		v := dec("-42.5")
		if e.Count != 1 || !e.Max.Equal(v) || !e.Min.Equal(v) || !e.Average.Equal(v) {
			t.Fatalf("unexpected %+v", e)
		}
	})
	t.Run("unrounded average", func(t *testing.T) {
		e := ComputeExtremes([]core.Asset{
			asset("a", core.Cash, "1", core.NewDate(2024, 1, 1)),
			asset("b", core.Cash, "1", core.NewDate(2024, 1, 1)),
			asset("c", core.Cash, "2", core.NewDate(2024, 1, 1)),
		})
		if e.Average.Round(2).String() != "1.33" || e.Average.Equal(dec("1.33")) {
			t.Fatalf("average should keep full precision, got %s", e.Average)
		}
		if !e.Max.Equal(dec("2")) || !e.Min.Equal(dec("1")) {
			t.Fatalf("unexpected max/min %s/%s", e.Max, e.Min)
		}
	})
}

// sampleAssets is a small mixed collection with a liability.
func sampleAssets() []core.Asset {
	return []core.Asset{
		asset("1", core.Cash, "8000", core.NewDate(2024, 1, 1)),
		asset("3", core.Bank, "120000", core.NewDate(2024, 1, 1)),
		asset("5", core.Bank, "-5000", core.NewDate(2024, 3, 1)),
		asset("9", core.Property, "2800000", core.NewDate(2020, 5, 1)),
		asset("15", core.Antique, "120000", core.NewDate(2021, 10, 1)),
	}
}

func TestMonthlySeriesSampleDataNonDecreasing(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	series := MonthlySeries(store.SampleAssets(), now, DefaultTrendMonths)

	if len(series) != DefaultTrendMonths {
		t.Fatalf("len = %d, want %d", len(series), DefaultTrendMonths)
	}
	if series[0].Label() != "2024-01" || series[len(series)-1].Label() != "2024-06" {
		t.Errorf("window = %s..%s", series[0].Label(), series[len(series)-1].Label())
	}
	for i := 1; i < len(series); i++ {
		if series[i].Total.LessThan(series[i-1].Total) {
			t.Errorf("%s total %s below %s total %s",
				series[i].Label(), series[i].Total, series[i-1].Label(), series[i-1].Total)
		}
	}

	// Every sample is dated before June, so the last point is the grand total.
	if want := ComputeTotals(store.SampleAssets()).Total; !series[len(series)-1].Total.Equal(want) {
		t.Errorf("last point = %s, want %s", series[len(series)-1].Total, want)
	}
}
