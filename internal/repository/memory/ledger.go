package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
)

type key struct {
	item string
	date string
}

// Ledger is an in-process repository.Ledger.
type Ledger struct {
	mu      sync.RWMutex
	records map[key]models.CountRecord
	nextID  int64
	now     func() time.Time
}

var _ repository.Ledger = (*Ledger)(nil)

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[key]models.CountRecord),
		now:     time.Now,
	}
}

func (l *Ledger) Get(_ context.Context, itemName, date string) (models.CountRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[key{itemName, date}]
	if !ok {
		return models.CountRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (l *Ledger) Upsert(_ context.Context, record models.CountRecord) (models.CountRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{record.ItemName, record.Date}
	if existing, ok := l.records[k]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		l.nextID++
		record.ID = l.nextID
		record.CreatedAt = l.now().UTC()
	}

	l.records[k] = record
	return record, nil
}

func (l *Ledger) ListByDate(_ context.Context, date string) ([]models.CountRecord, error) {
	out := l.filter(func(rec models.CountRecord) bool { return rec.Date == date })
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (l *Ledger) ListPage(_ context.Context, offset, limit int) ([]models.CountRecord, int, error) {
	all := l.filter(func(models.CountRecord) bool { return true })
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.ItemName != b.ItemName {
			return a.ItemName < b.ItemName
		}
		return a.ID > b.ID
	})

	total := len(all)
	if offset >= total {
		return []models.CountRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (l *Ledger) ListRange(_ context.Context, from, to string) ([]models.CountRecord, error) {
	out := l.filter(func(rec models.CountRecord) bool {
		if from != "" && rec.Date < from {
			return false
		}
		if to != "" && rec.Date > to {
			return false
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *Ledger) Delete(_ context.Context, itemName, date string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{itemName, date}
	if _, ok := l.records[k]; !ok {
		return repository.ErrNotFound
	}
	delete(l.records, k)
	return nil
}

func (l *Ledger) Close(context.Context) error { return nil }

func (l *Ledger) filter(keep func(models.CountRecord) bool) []models.CountRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.CountRecord, 0, len(l.records))
	for _, rec := range l.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
