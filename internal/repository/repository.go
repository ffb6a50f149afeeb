// Package repository defines the count ledger contract shared by every storage backend.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// ErrNotFound is returned when no ledger entry matches (item_name, date).
var ErrNotFound = errors.New("ledger entry not found")

// Ledger stores one CountRecord per (item_name, date).
type Ledger interface {
	// Get returns the entry for (itemName, date) or ErrNotFound.
	Get(ctx context.Context, itemName, date string) (models.CountRecord, error)
	// Upsert inserts the record or replaces the entry with the same key. The
	// original id and created_at of a replaced entry are kept.
	Upsert(ctx context.Context, record models.CountRecord) (models.CountRecord, error)
	// ListByDate returns the entries of one day ordered by item name.
	ListByDate(ctx context.Context, date string) ([]models.CountRecord, error)
	// ListPage returns entries ordered by date desc, item name asc, id desc,
	// together with the total number of entries.
	ListPage(ctx context.Context, offset, limit int) ([]models.CountRecord, int, error)
	// ListRange returns entries with from <= date <= to. Empty bounds are open.
	ListRange(ctx context.Context, from, to string) ([]models.CountRecord, error)
	// Delete removes the entry for (itemName, date) or returns ErrNotFound.
	Delete(ctx context.Context, itemName, date string) error
	Close(ctx context.Context) error
}
