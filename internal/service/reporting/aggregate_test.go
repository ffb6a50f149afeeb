package reporting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

func coffeeBeans() []models.CountRecord {
	return []models.CountRecord{
		{ID: 1, ItemName: "Coffee Beans", Date: "2024-03-01", YesterdayCount: 100, CurrentCount: 100, RestocksReceived: 0, SoldCalculated: 0},
		{ID: 2, ItemName: "Coffee Beans", Date: "2024-03-02", YesterdayCount: 100, CurrentCount: 70, RestocksReceived: 20, SoldCalculated: 50},
		{ID: 3, ItemName: "Coffee Beans", Date: "2024-03-03", YesterdayCount: 70, CurrentCount: 90, RestocksReceived: 50, SoldCalculated: 30},
	}
}

func TestAggregateCoffeeBeansScenario(t *testing.T) {
	rows := Aggregate(coffeeBeans())
	require.Len(t, rows, 1)

	assert.Equal(t, models.SummaryRow{
		ItemName:         "Coffee Beans",
		TotalSold:        80,
		TotalRestocked:   70,
		AvgStartingStock: 90,
		TotalStock:       160,
		CurrentStock:     90,
		DaysTracked:      3,
		TurnoverRate:     29.63,
	}, rows[0])
}

func TestAggregateCurrentStockIsLatestNotMaximum(t *testing.T) {
	records := []models.CountRecord{
		{ID: 7, ItemName: "Milk", Date: "2024-03-02", YesterdayCount: 50, CurrentCount: 10},
		{ID: 3, ItemName: "Milk", Date: "2024-03-01", YesterdayCount: 50, CurrentCount: 50},
	}

	rows := Aggregate(records)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].CurrentStock)
}

func TestAggregateTieBreaksOnInsertionOrder(t *testing.T) {
	records := []models.CountRecord{
		{ID: 9, ItemName: "Milk", Date: "2024-03-02", CurrentCount: 4},
		{ID: 4, ItemName: "Milk", Date: "2024-03-02", CurrentCount: 8},
	}

	rows := Aggregate(records)
	assert.Equal(t, 4, rows[0].CurrentStock)
}

func TestAggregateTotalsMatchPerItemSums(t *testing.T) {
	records := append(coffeeBeans(),
		models.CountRecord{ID: 4, ItemName: "Bagels", Date: "2024-03-01", YesterdayCount: 20, CurrentCount: 20},
		models.CountRecord{ID: 5, ItemName: "Bagels", Date: "2024-03-02", YesterdayCount: 20, CurrentCount: 5, RestocksReceived: 10, SoldCalculated: 25},
		models.CountRecord{ID: 6, ItemName: "Apples", Date: "2024-03-02", YesterdayCount: 3, CurrentCount: 1, SoldCalculated: 2},
	)

	rows := Aggregate(records)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Apples", "Bagels", "Coffee Beans"}, []string{rows[0].ItemName, rows[1].ItemName, rows[2].ItemName})

	want := map[string]int{}
	for _, rec := range records {
		want[rec.ItemName] += rec.SoldCalculated
	}
	total := 0
	for _, row := range rows {
		assert.Equal(t, want[row.ItemName], row.TotalSold, row.ItemName)
		total += row.TotalSold
	}
	assert.Equal(t, 107, total)
}

func TestAggregateRoundsAverageToTwoDecimals(t *testing.T) {
	records := []models.CountRecord{
		{ID: 1, ItemName: "Tea", Date: "2024-03-01", YesterdayCount: 10},
		{ID: 2, ItemName: "Tea", Date: "2024-03-02", YesterdayCount: 10},
		{ID: 3, ItemName: "Tea", Date: "2024-03-03", YesterdayCount: 11, SoldCalculated: 1},
	}

	rows := Aggregate(records)
	assert.Equal(t, 10.33, rows[0].AvgStartingStock)
	assert.Equal(t, 3.23, rows[0].TurnoverRate)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestTurnoverRateIsZeroWithoutStartingStock(t *testing.T) {
	assert.Zero(t, TurnoverRate(500, decimal.Zero, 3))
	assert.Zero(t, TurnoverRate(10, decimal.NewFromInt(5), 0))

	rows := Aggregate([]models.CountRecord{
		{ID: 1, ItemName: "Ice", Date: "2024-03-01", YesterdayCount: 0, SoldCalculated: 12},
	})
	assert.Zero(t, rows[0].TurnoverRate)
	assert.Zero(t, rows[0].AvgStartingStock)
}
