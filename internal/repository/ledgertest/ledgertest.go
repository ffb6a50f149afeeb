// Package ledgertest holds a behavioural suite every repository.Ledger must pass.
package ledgertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
)

// Run exercises the Ledger contract against a fresh ledger from newLedger.
func Run(t *testing.T, newLedger func(t *testing.T) repository.Ledger) {
	t.Run("GetMissing", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.Get(context.Background(), "Coffee Beans", "2024-03-01")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ItemNamesAreCaseSensitive", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()

		_, err := l.Upsert(ctx, record("Milk", "2024-03-01", 10, 10, 0, 0))
		require.NoError(t, err)

		_, err = l.Get(ctx, "milk", "2024-03-01")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = l.Upsert(ctx, record("milk", "2024-03-01", 3, 3, 0, 0))
		require.NoError(t, err)

		records, err := l.ListByDate(ctx, "2024-03-01")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("StoresSalesAboveCountBound", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()

		_, err := l.Upsert(ctx, record("Pallets", "2024-03-02", models.MaxCount, 0, models.MaxCount, 2*models.MaxCount))
		require.NoError(t, err)

		got, err := l.Get(ctx, "Pallets", "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, 2*models.MaxCount, got.SoldCalculated)
	})

	t.Run("UpsertReplacesByKey", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()

		first, err := l.Upsert(ctx, record("Tea", "2024-03-01", 10, 20, 0, 0))
		require.NoError(t, err)
		assert.NotZero(t, first.ID)

		second, err := l.Upsert(ctx, record("Tea", "2024-03-01", 10, 15, 2, 7))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		assert.Equal(t, 15, second.CurrentCount)
		assert.Equal(t, 2, second.RestocksReceived)
		assert.Equal(t, 7, second.SoldCalculated)

		got, err := l.Get(ctx, "Tea", "2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, 15, got.CurrentCount)

		_, total, err := l.ListPage(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("ListByDate", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		seed(t, l)

		records, err := l.ListByDate(ctx, "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, []string{"Bagels", "Tea"}, names(records))

		records, err = l.ListByDate(ctx, "2030-01-01")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("ListPageOrdering", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		seed(t, l)

		records, total, err := l.ListPage(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, records, 2)
		assert.Equal(t, "2024-03-03", records[0].Date)
		assert.Equal(t, "Tea", records[0].ItemName)
		assert.Equal(t, "2024-03-02", records[1].Date)
		assert.Equal(t, "Bagels", records[1].ItemName)

		records, total, err = l.ListPage(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []string{"Tea", "Bagels", "Tea"}, names(records))
		assert.Equal(t, "2024-03-01", records[2].Date)

		records, _, err = l.ListPage(ctx, 50, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("ListRange", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		seed(t, l)

		all, err := l.ListRange(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, all, 5)

		bounded, err := l.ListRange(ctx, "2024-03-02", "2024-03-02")
		require.NoError(t, err)
		assert.Len(t, bounded, 2)

		open, err := l.ListRange(ctx, "2024-03-02", "")
		require.NoError(t, err)
		assert.Len(t, open, 3)

		upTo, err := l.ListRange(ctx, "", "2024-03-01")
		require.NoError(t, err)
		assert.Len(t, upTo, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		l := newLedger(t)
		ctx := context.Background()
		seed(t, l)

		require.NoError(t, l.Delete(ctx, "Tea", "2024-03-02"))
		_, err := l.Get(ctx, "Tea", "2024-03-02")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.ErrorIs(t, l.Delete(ctx, "Tea", "2024-03-02"), repository.ErrNotFound)
		assert.ErrorIs(t, l.Delete(ctx, "Ghost Item", "2099-01-01"), repository.ErrNotFound)
	})
}

func record(item, date string, yesterday, current, restocks, sold int) models.CountRecord {
	return models.CountRecord{
		ItemName:         item,
		Date:             date,
		YesterdayCount:   yesterday,
		CurrentCount:     current,
		RestocksReceived: restocks,
		SoldCalculated:   sold,
	}
}

func seed(t *testing.T, l repository.Ledger) {
	t.Helper()
	for _, rec := range []models.CountRecord{
		record("Tea", "2024-03-01", 30, 30, 0, 0),
		record("Bagels", "2024-03-01", 12, 12, 0, 0),
		record("Tea", "2024-03-02", 30, 20, 0, 10),
		record("Bagels", "2024-03-02", 12, 4, 6, 14),
		record("Tea", "2024-03-03", 20, 18, 0, 2),
	} {
		_, err := l.Upsert(context.Background(), rec)
		require.NoError(t, err)
	}
}

func names(records []models.CountRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ItemName)
	}
	return out
}
