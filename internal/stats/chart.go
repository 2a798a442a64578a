package stats

import (
	"familyassets/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// Slice is one segment of the distribution donut.
	Slice struct {
		Category core.Category   `json:"category"`
		Label    string          `json:"label"`
		Color    string          `json:"color"`
		Value    decimal.Decimal `json:"value"`
		Percent  decimal.Decimal `json:"percent"`
	}

	// Bar is one category of the category bar chart.
	Bar struct {
		Category core.Category   `json:"category"`
		Label    string          `json:"label"`
		Color    string          `json:"color"`
		Value    decimal.Decimal `json:"value"`
	}

	// TrendChart holds the line chart of the cumulative series.
	TrendChart struct {
		Labels []string          `json:"labels"`
		Values []decimal.Decimal `json:"values"`
	}
)

var hundred = decimal.NewFromInt(100)

// Distribution returns the donut slices. Only categories with a positive
// total are shown; percentages are relative to the shown slices and rounded
// to one decimal.
func Distribution(t Totals) []Slice {
	var slices []Slice
	sum := decimal.Zero
	for _, c := range core.Categories() {
		v := t.Of(c)
		if !v.IsPositive() {
			continue
		}
		slices = append(slices, Slice{Category: c, Label: c.Label(), Color: c.Color(), Value: v})
		sum = sum.Add(v)
	}
	for i := range slices {
		slices[i].Percent = slices[i].Value.Mul(hundred).Div(sum).Round(1)
	}
	return slices
}

// CategoryBars returns every category in display order, including empty ones.
func CategoryBars(t Totals) []Bar {
	cats := core.Categories()
	bars := make([]Bar, 0, len(cats))
	for _, c := range cats {
		bars = append(bars, Bar{Category: c, Label: c.Label(), Color: c.Color(), Value: t.Of(c)})
	}
	return bars
}

// Trend shapes a monthly series for the line chart.
func Trend(series []MonthPoint) TrendChart {
	chart := TrendChart{
		Labels: make([]string, 0, len(series)),
		Values: make([]decimal.Decimal, 0, len(series)),
	}
	for _, p := range series {
		chart.Labels = append(chart.Labels, p.Label())
		chart.Values = append(chart.Values, p.Total)
	}
	return chart
}
