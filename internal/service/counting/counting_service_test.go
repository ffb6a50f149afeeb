package counting

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/repository/memory"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

func newTestService(t *testing.T, today string) (*Service, *memory.Ledger) {
	t.Helper()

	ledger := memory.NewLedger()
	svc := NewService(ledger, time.UTC, nil)
	svc.now = func() time.Time {
		d, err := models.ParseDate(today)
		require.NoError(t, err)
		return d.Add(12 * time.Hour)
	}
	return svc, ledger
}

func submit(t *testing.T, svc *Service, item, date string, current, restocks int) models.CountResult {
	t.Helper()
	res, err := svc.RecordDailyCount(context.Background(), models.SubmitCount{
		ItemName:         item,
		CurrentCount:     current,
		RestocksReceived: restocks,
		Date:             date,
	})
	require.NoError(t, err)
	return res
}

func TestRecordDailyCountCoffeeBeansScenario(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-03")

	day1 := submit(t, svc, "Coffee Beans", "2024-03-01", 100, 0)
	assert.True(t, day1.IsFirstDay)
	assert.Equal(t, "Initial count recorded!", day1.Message)
	assert.Equal(t, 100, day1.Record.YesterdayCount)
	assert.Equal(t, 0, day1.Record.SoldCalculated)

	day2 := submit(t, svc, "Coffee Beans", "2024-03-02", 70, 20)
	assert.False(t, day2.IsFirstDay)
	assert.Equal(t, 100, day2.Record.YesterdayCount)
	assert.Equal(t, 50, day2.Record.SoldCalculated)
	assert.Equal(t, "Sales calculated: 50 items sold yesterday!", day2.Message)

	day3 := submit(t, svc, "Coffee Beans", "", 90, 50)
	assert.Equal(t, "2024-03-03", day3.Record.Date)
	assert.Equal(t, 70, day3.Record.YesterdayCount)
	assert.Equal(t, 30, day3.Record.SoldCalculated)
}

func TestRecordDailyCountOnlyLooksAtTheImmediatelyPrecedingDay(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-10")

	submit(t, svc, "Milk", "2024-03-01", 40, 0)
	res := submit(t, svc, "Milk", "2024-03-10", 25, 0)

	assert.True(t, res.IsFirstDay)
	assert.Equal(t, 25, res.Record.YesterdayCount)
	assert.Zero(t, res.Record.SoldCalculated)
}

func TestRecordDailyCountFloorsNegativeSales(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-02")

	submit(t, svc, "Cups", "2024-03-01", 10, 0)
	res := submit(t, svc, "Cups", "2024-03-02", 60, 5)

	assert.Equal(t, 10, res.Record.YesterdayCount)
	assert.Zero(t, res.Record.SoldCalculated)
}

func TestRecordDailyCountIsIdempotentForIdenticalInput(t *testing.T) {
	svc, ledger := newTestService(t, "2024-03-02")
	submit(t, svc, "Tea", "2024-03-01", 30, 0)

	first := submit(t, svc, "Tea", "2024-03-02", 20, 5)
	second := submit(t, svc, "Tea", "2024-03-02", 20, 5)

	assert.Equal(t, first.Record, second.Record)

	stored, err := ledger.Get(context.Background(), "Tea", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, first.Record, stored)
}

func TestRecordDailyCountOverwritesSameKey(t *testing.T) {
	svc, ledger := newTestService(t, "2024-03-02")
	submit(t, svc, "Tea", "2024-03-01", 30, 0)

	first := submit(t, svc, "Tea", "2024-03-02", 20, 0)
	second := submit(t, svc, "Tea", "2024-03-02", 25, 0)

	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 5, second.Record.SoldCalculated)

	today, err := ledger.ListByDate(context.Background(), "2024-03-02")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, 25, today[0].CurrentCount)
}

func TestRecordDailyCountRejectsInvalidInputWithoutWriting(t *testing.T) {
	svc, ledger := newTestService(t, "2024-03-02")

	inputs := []models.SubmitCount{
		{ItemName: "", CurrentCount: 1},
		{ItemName: "   ", CurrentCount: 1},
		{ItemName: "Milk", CurrentCount: -1},
		{ItemName: "Milk", CurrentCount: 1, RestocksReceived: -4},
		{ItemName: "Milk", CurrentCount: 1, Date: "03/02/2024"},
		{ItemName: "Milk", CurrentCount: 1, Date: "2024-02-30"},
		{ItemName: "Milk 1/2", CurrentCount: 1},
	}

	for _, in := range inputs {
		_, err := svc.RecordDailyCount(context.Background(), in)
		assert.ErrorIs(t, err, validation.ErrInvalidInput, "%+v", in)
	}

	_, total, err := ledger.ListPage(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecordDailyCountRejectsCountsAboveMaxCount(t *testing.T) {
	svc, ledger := newTestService(t, "2024-03-02")
	submit(t, svc, "Milk", "2024-03-01", 5, 0)

	inputs := []models.SubmitCount{
		{ItemName: "Milk", CurrentCount: 0, RestocksReceived: math.MaxInt64},
		{ItemName: "Milk", CurrentCount: models.MaxCount + 1},
		{ItemName: "Milk", CurrentCount: 0, RestocksReceived: models.MaxCount + 1},
	}
	for _, in := range inputs {
		_, err := svc.RecordDailyCount(context.Background(), in)
		require.ErrorIs(t, err, validation.ErrInvalidInput, "%+v", in)
		assert.Contains(t, err.Error(), "must be <= 2147483647")
	}

	_, err := ledger.Get(context.Background(), "Milk", "2024-03-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordDailyCountAtMaxCountKeepsExactSales(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-02")
	submit(t, svc, "Pallets", "2024-03-01", models.MaxCount, 0)

	res := submit(t, svc, "Pallets", "2024-03-02", 0, models.MaxCount)
	assert.Equal(t, 2*models.MaxCount, res.Record.SoldCalculated)
}

type failingLedger struct {
	*memory.Ledger
}

func (failingLedger) Upsert(context.Context, models.CountRecord) (models.CountRecord, error) {
	return models.CountRecord{}, errors.New("disk full")
}

func TestRecordDailyCountSurfacesPersistenceErrors(t *testing.T) {
	svc := NewService(failingLedger{memory.NewLedger()}, time.UTC, nil)

	_, err := svc.RecordDailyCount(context.Background(), models.SubmitCount{ItemName: "Milk", CurrentCount: 3})
	require.Error(t, err)
	assert.NotErrorIs(t, err, validation.ErrInvalidInput)
	assert.Contains(t, err.Error(), "disk full")
}

func TestListTodayUsesServiceDay(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-02")
	submit(t, svc, "Tea", "2024-03-01", 30, 0)
	submit(t, svc, "Scones", "2024-03-02", 12, 0)
	submit(t, svc, "Bagels", "2024-03-02", 8, 0)

	records, err := svc.ListToday(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bagels", records[0].ItemName)
	assert.Equal(t, "Scones", records[1].ItemName)
}

func TestListHistoryPaginates(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-03")
	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		submit(t, svc, "Tea", date, 10, 0)
		submit(t, svc, "Milk", date, 10, 0)
	}

	page, err := svc.ListHistory(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 6, TotalPages: 1}, page.Pagination)

	page, err = svc.ListHistory(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 4, Total: 6, TotalPages: 2}, page.Pagination)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "2024-03-01", page.Data[0].Date)
	assert.Equal(t, "Milk", page.Data[0].ItemName)
	assert.Equal(t, "Tea", page.Data[1].ItemName)

	_, err = svc.ListHistory(context.Background(), 1, MaxLimit+1)
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
	_, err = svc.ListHistory(context.Background(), -1, 10)
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
}

func TestDeleteEntry(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-02")
	submit(t, svc, "Tea", "2024-03-02", 10, 0)

	require.NoError(t, svc.DeleteEntry(context.Background(), "Tea", "2024-03-02"))

	err := svc.DeleteEntry(context.Background(), "Tea", "2024-03-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = svc.DeleteEntry(context.Background(), "Ghost Item", "2099-01-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = svc.DeleteEntry(context.Background(), "Tea", "not-a-date")
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
}

func TestConcurrentSubmissionsForDifferentItems(t *testing.T) {
	svc, ledger := newTestService(t, "2024-03-02")

	items := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	done := make(chan error, len(items))
	for _, item := range items {
		go func(item string) {
			_, err := svc.RecordDailyCount(context.Background(), models.SubmitCount{ItemName: item, CurrentCount: 5, Date: "2024-03-02"})
			done <- err
		}(item)
	}
	for range items {
		require.NoError(t, <-done)
	}

	records, err := ledger.ListByDate(context.Background(), "2024-03-02")
	require.NoError(t, err)
	assert.Len(t, records, len(items))
}
