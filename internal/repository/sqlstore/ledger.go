// Package sqlstore implements the count ledger on database/sql for SQLite and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
)

const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	selectColumns   = "id, item_name, date, yesterday_count, current_count, restocks_received, sold_calculated, created_at"
)

// Ledger is a repository.Ledger backed by a SQL database.
type Ledger struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

var _ repository.Ledger = (*Ledger)(nil)

func newLedger(db *sql.DB, d dialect, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{db: db, dialect: d, logger: logger, now: time.Now}
}

// DB exposes the underlying handle for maintenance and tests.
func (l *Ledger) DB() *sql.DB {
	return l.db
}

func (l *Ledger) Get(ctx context.Context, itemName, date string) (models.CountRecord, error) {
	row := l.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM count_records WHERE item_name = ? AND date = ?",
		itemName, date)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CountRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return models.CountRecord{}, fmt.Errorf("get count %s/%s: %w", itemName, date, err)
	}
	return rec, nil
}

func (l *Ledger) Upsert(ctx context.Context, record models.CountRecord) (models.CountRecord, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CountRecord{}, fmt.Errorf("begin upsert transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, l.dialect.upsertSQL,
		record.ItemName,
		record.Date,
		record.YesterdayCount,
		record.CurrentCount,
		record.RestocksReceived,
		record.SoldCalculated,
		l.now().UTC().Format(timestampLayout),
	)
	if err != nil {
		_ = tx.Rollback()
		return models.CountRecord{}, fmt.Errorf("upsert count %s/%s: %w", record.ItemName, record.Date, err)
	}

	row := tx.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM count_records WHERE item_name = ? AND date = ?",
		record.ItemName, record.Date)
	stored, err := scanRecord(row)
	if err != nil {
		_ = tx.Rollback()
		return models.CountRecord{}, fmt.Errorf("reload count %s/%s: %w", record.ItemName, record.Date, err)
	}

	if err := tx.Commit(); err != nil {
		return models.CountRecord{}, fmt.Errorf("commit upsert transaction: %w", err)
	}

	l.logger.Debug("count upserted", zap.String("item", stored.ItemName), zap.String("date", stored.Date), zap.Int64("id", stored.ID))
	return stored, nil
}

func (l *Ledger) ListByDate(ctx context.Context, date string) ([]models.CountRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM count_records WHERE date = ? ORDER BY item_name ASC",
		date)
	if err != nil {
		return nil, fmt.Errorf("list counts for %s: %w", date, err)
	}
	return collect(rows)
}

func (l *Ledger) ListPage(ctx context.Context, offset, limit int) ([]models.CountRecord, int, error) {
	var total int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM count_records").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	rows, err := l.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM count_records ORDER BY date DESC, item_name ASC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history page: %w", err)
	}

	records, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (l *Ledger) ListRange(ctx context.Context, from, to string) ([]models.CountRecord, error) {
	var (
		clauses []string
		args    []any
	)
	if from != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, from)
	}
	if to != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, to)
	}

	query := "SELECT " + selectColumns + " FROM count_records"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list counts in range [%s, %s]: %w", from, to, err)
	}
	return collect(rows)
}

func (l *Ledger) Delete(ctx context.Context, itemName, date string) error {
	res, err := l.db.ExecContext(ctx, "DELETE FROM count_records WHERE item_name = ? AND date = ?", itemName, date)
	if err != nil {
		return fmt.Errorf("delete count %s/%s: %w", itemName, date, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete count %s/%s: %w", itemName, date, err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Close closes the database handle.
func (l *Ledger) Close(context.Context) error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.CountRecord, error) {
	var (
		rec       models.CountRecord
		createdAt any
	)
	err := s.Scan(
		&rec.ID,
		&rec.ItemName,
		&rec.Date,
		&rec.YesterdayCount,
		&rec.CurrentCount,
		&rec.RestocksReceived,
		&rec.SoldCalculated,
		&createdAt,
	)
	if err != nil {
		return models.CountRecord{}, err
	}

	rec.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return models.CountRecord{}, err
	}
	return rec, nil
}

func collect(rows *sql.Rows) ([]models.CountRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	records := make([]models.CountRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return records, nil
}

// parseTimestamp accepts the driver-specific representations of created_at:
// time.Time from MySQL with parseTime, text from SQLite.
func parseTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseTimestampText(string(v))
	case string:
		return parseTimestampText(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported created_at type %T", value)
	}
}

func parseTimestampText(value string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable created_at %q", value)
}
