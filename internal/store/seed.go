package store

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"familyassets/internal/core"
)

type sample struct {
	name, desc string
	typ        core.Category
	amount     int64
	y, m, d    int
}

var samples = []sample{
	{"Household emergency cash", "Everyday spending reserve", core.Cash, 8000, 2024, 1, 1},
	{"Pocket money", "Personal allowance", core.Cash, 2000, 2024, 1, 15},
	{"ICBC savings card", "Main savings account", core.Bank, 120000, 2024, 1, 1},
	{"CCB fixed deposit", "One-year fixed deposit", core.Bank, 50000, 2024, 2, 1},
	{"CMB credit card", "Credit card balance owed", core.Bank, -5000, 2024, 3, 1},
	{"Stocks", "A-share market holdings", core.Investment, 80000, 2024, 1, 10},
	{"Mutual funds", "Hybrid funds", core.Investment, 45000, 2024, 1, 15},
	{"Wealth management product", "Bank wealth management product", core.Investment, 30000, 2024, 2, 10},
	{"Family home", "Three bedrooms, 120 square meters", core.Property, 2800000, 2020, 5, 1},
	{"Rental apartment", "Two bedrooms, let to tenants", core.Property, 1500000, 2022, 8, 15},
	{"Family car", "Bought in 2021, 30,000 km driven", core.Vehicle, 180000, 2021, 3, 20},
	{"E-bike", "Daily commuting", core.Vehicle, 8000, 2023, 6, 1},
	{"Gold necklace", "18K gold, 30 grams", core.Jewelry, 15000, 2023, 12, 25},
	{"Diamond ring", "One carat diamond ring", core.Jewelry, 25000, 2022, 2, 14},
	{"Qing dynasty vase", "Blue and white porcelain vase", core.Antique, 120000, 2021, 10, 1},
	{"Calligraphy and paintings", "Works by contemporary artists", core.Antique, 80000, 2023, 5, 1},
	{"Insurance cash value", "Life insurance surrender value", core.Other, 35000, 2024, 1, 1},
	{"Housing provident fund", "Provident fund balance", core.Other, 85000, 2024, 1, 1},
}

// SampleAssets returns the records written on first start when nothing is
// stored yet. Ids are "1" to "18"; createdAt is midnight UTC on the asset date.
func SampleAssets() []core.Asset {
	out := make([]core.Asset, 0, len(samples))
	for i, s := range samples {
		date := core.NewDate(s.y, s.m, s.d)
		out = append(out, core.Asset{
			ID:          strconv.Itoa(i + 1),
			Name:        s.name,
			Type:        s.typ,
			Amount:      decimal.NewFromInt(s.amount),
			Description: s.desc,
			Date:        date,
			CreatedAt:   time.Date(s.y, time.Month(s.m), s.d, 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}

