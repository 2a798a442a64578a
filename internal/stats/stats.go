// Package stats aggregates asset collections into totals, trend series and
// chart data. Every function is pure and safe to call concurrently.
package stats

import (
	"time"

	"familyassets/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultTrendMonths is the trailing window used when none is configured.
const DefaultTrendMonths = 6

type (
	// Totals holds the sum of amounts per category plus the grand total.
	Totals struct {
		ByCategory map[core.Category]decimal.Decimal
		Total      decimal.Decimal
	}

	// MonthPoint is the cumulative total at the first day of a month.
	MonthPoint struct {
		Year  int
		Month int // 1-12
		Total decimal.Decimal
	}

	// Extremes summarizes the spread of amounts in a collection.
	Extremes struct {
		Count   int
		Total   decimal.Decimal
		Average decimal.Decimal
		Max     decimal.Decimal
		Min     decimal.Decimal
	}
)

// ComputeTotals sums amounts per category. All known categories are present in the
// result, zero when they hold no records. Unknown categories count as Other.
func ComputeTotals(assets []core.Asset) Totals {
	t := Totals{
		ByCategory: make(map[core.Category]decimal.Decimal, len(core.Categories())),
		Total:      decimal.Zero,
	}
	for _, c := range core.Categories() {
		t.ByCategory[c] = decimal.Zero
	}
	for _, a := range assets {
		bucket := a.Type.Bucket()
		t.ByCategory[bucket] = t.ByCategory[bucket].Add(a.Amount)
		t.Total = t.Total.Add(a.Amount)
	}
	return t
}

// Of returns the total for one category.
func (t Totals) Of(c core.Category) decimal.Decimal {
	if v, ok := t.ByCategory[c.Bucket()]; ok {
		return v
	}
	return decimal.Zero
}

// MonthlySeries returns one point per trailing calendar month, oldest first,
// ending with the month containing now. Each point sums every asset dated on
// or before that month's first day: a cumulative snapshot, not a delta.
func MonthlySeries(assets []core.Asset, now time.Time, months int) []MonthPoint {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	series := make([]MonthPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		first := current.AddDate(0, -i, 0)
		boundary := core.Date{Time: first}
		sum := decimal.Zero
		for _, a := range assets {
			if a.Date.OnOrBefore(boundary) {
				sum = sum.Add(a.Amount)
			}
		}
		series = append(series, MonthPoint{
			Year:  first.Year(),
			Month: int(first.Month()),
			Total: sum,
		})
	}
	return series
}

// Label renders the point as YYYY-MM.
func (p MonthPoint) Label() string {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ComputeExtremes returns count, average, maximum and minimum amount. The
// average is not rounded; all fields are zero for an empty collection.
func ComputeExtremes(assets []core.Asset) Extremes {
	e := Extremes{
		Total:   decimal.Zero,
		Average: decimal.Zero,
		Max:     decimal.Zero,
		Min:     decimal.Zero,
	}
	for i, a := range assets {
		if i == 0 {
			e.Max, e.Min = a.Amount, a.Amount
		}
		if a.Amount.GreaterThan(e.Max) {
			e.Max = a.Amount
		}
		if a.Amount.LessThan(e.Min) {
			e.Min = a.Amount
		}
		e.Total = e.Total.Add(a.Amount)
	}
	e.Count = len(assets)
	if e.Count > 0 {
		e.Average = e.Total.Div(decimal.NewFromInt(int64(e.Count)))
	}
	return e
}
