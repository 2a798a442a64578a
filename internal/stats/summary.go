package stats

import (
	"time"

	"familyassets/internal/core"
)

// Summary bundles everything the dashboard and statistics views render.
type Summary struct {
	Totals       Totals
	Series       []MonthPoint
	Extremes     Extremes
	Distribution []Slice
	Bars         []Bar
	Trend        TrendChart
	ComputedAt   time.Time
}

// Summarize computes a Summary for the collection as of now.
func Summarize(assets []core.Asset, now time.Time, months int) Summary {
	totals := ComputeTotals(assets)
	series := MonthlySeries(assets, now, months)
	return Summary{
		Totals:       totals,
		Series:       series,
		Extremes:     ComputeExtremes(assets),
		Distribution: Distribution(totals),
		Bars:         CategoryBars(totals),
		Trend:        Trend(series),
		ComputedAt:   now,
	}
}
