package reporting

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

type itemGroup struct {
	name          string
	totalSold     int64
	totalRestock  int64
	startingSum   int64
	days          int64
	latest        models.CountRecord
	latestPresent bool
}

// Aggregate folds ledger records into one summary row per item, ordered by item name.
func Aggregate(records []models.CountRecord) []models.SummaryRow {
	groups := make(map[string]*itemGroup)
	for _, rec := range records {
		g, ok := groups[rec.ItemName]
		if !ok {
			g = &itemGroup{name: rec.ItemName}
			groups[rec.ItemName] = g
		}

		g.totalSold += int64(rec.SoldCalculated)
		g.totalRestock += int64(rec.RestocksReceived)
		g.startingSum += int64(rec.YesterdayCount)
		g.days++

		if !g.latestPresent || isLater(rec, g.latest) {
			g.latest = rec
			g.latestPresent = true
		}
	}

	rows := make([]models.SummaryRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, g.row())
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ItemName < rows[j].ItemName })
	return rows
}

// isLater orders records by date, then insertion id.
func isLater(a, b models.CountRecord) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.ID > b.ID
}

func (g *itemGroup) row() models.SummaryRow {
	avg := decimal.Zero
	if g.days > 0 {
		avg = decimal.NewFromInt(g.startingSum).Div(decimal.NewFromInt(g.days))
	}

	return models.SummaryRow{
		ItemName:         g.name,
		TotalSold:        int(g.totalSold),
		TotalRestocked:   int(g.totalRestock),
		AvgStartingStock: avg.Round(2).InexactFloat64(),
		TotalStock:       avg.Add(decimal.NewFromInt(g.totalRestock)).Round(2).InexactFloat64(),
		CurrentStock:     g.latest.CurrentCount,
		DaysTracked:      int(g.days),
		TurnoverRate:     TurnoverRate(g.totalSold, avg, g.days),
	}
}

// TurnoverRate is total_sold / avg_starting_stock / days_tracked * 100, rounded
// to two decimals, and 0 when the average stock or the day count is zero.
func TurnoverRate(totalSold int64, avgStartingStock decimal.Decimal, days int64) float64 {
	if !avgStartingStock.IsPositive() || days <= 0 {
		return 0
	}
	return decimal.NewFromInt(totalSold).
		Div(avgStartingStock).
		Div(decimal.NewFromInt(days)).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}
