// Package counting records daily stock counts and derives sold quantities.
package counting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Service implements count submission and ledger browsing.
type Service struct {
	ledger    repository.Ledger
	validator *validation.Validator
	locks     *keyLock
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a counting service. loc defines the day boundary for "today".
func NewService(ledger repository.Ledger, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		ledger:    ledger,
		validator: validation.New(),
		locks:     newKeyLock(),
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Today returns the current calendar day in the service timezone.
func (s *Service) Today() string {
	return models.Today(s.now(), s.loc)
}

// RecordDailyCount derives sold_calculated from the previous day's snapshot
// and upserts the (item, date) entry. Input errors are rejected before any read.
func (s *Service) RecordDailyCount(ctx context.Context, in models.SubmitCount) (models.CountResult, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.Date = strings.TrimSpace(in.Date)

	if err := s.validator.Struct(in); err != nil {
		return models.CountResult{}, err
	}

	date := in.Date
	if date == "" {
		date = s.Today()
	}
	yesterday, err := models.PreviousDay(date)
	if err != nil {
		return models.CountResult{}, validation.Invalid("%v", err)
	}

	unlock := s.locks.Lock(in.ItemName)
	defer unlock()

	var prior *models.CountRecord
	prev, err := s.ledger.Get(ctx, in.ItemName, yesterday)
	switch {
	case err == nil:
		prior = &prev
	case errors.Is(err, repository.ErrNotFound):
	default:
		return models.CountResult{}, fmt.Errorf("load previous count: %w", err)
	}

	d := Derive(prior, in.CurrentCount, in.RestocksReceived)

	stored, err := s.ledger.Upsert(ctx, models.CountRecord{
		ItemName:         in.ItemName,
		Date:             date,
		YesterdayCount:   d.StartingCount,
		CurrentCount:     in.CurrentCount,
		RestocksReceived: in.RestocksReceived,
		SoldCalculated:   d.SoldCalculated,
	})
	if err != nil {
		return models.CountResult{}, fmt.Errorf("save count: %w", err)
	}

	s.logger.Info("count recorded",
		zap.String("item", stored.ItemName),
		zap.String("date", stored.Date),
		zap.Int("starting", stored.YesterdayCount),
		zap.Int("current", stored.CurrentCount),
		zap.Int("restocks", stored.RestocksReceived),
		zap.Int("sold", stored.SoldCalculated),
		zap.Bool("first_day", d.FirstDay))

	return models.CountResult{
		Record:     stored,
		IsFirstDay: d.FirstDay,
		Message:    outcomeMessage(d),
	}, nil
}

func outcomeMessage(d Derivation) string {
	if d.FirstDay {
		return "Initial count recorded!"
	}
	return fmt.Sprintf("Sales calculated: %d items sold yesterday!", d.SoldCalculated)
}

// ListToday returns every entry recorded for the current day.
func (s *Service) ListToday(ctx context.Context) ([]models.CountRecord, error) {
	records, err := s.ledger.ListByDate(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("list today's counts: %w", err)
	}
	return records, nil
}

// ListHistory returns one page of the ledger. Zero page or limit select the defaults.
func (s *Service) ListHistory(ctx context.Context, page, limit int) (models.HistoryPage, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 0 {
		return models.HistoryPage{}, validation.Invalid("page must be positive")
	}
	if limit < 0 || limit > MaxLimit {
		return models.HistoryPage{}, validation.Invalid("limit must be between 1 and %d", MaxLimit)
	}

	records, total, err := s.ledger.ListPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return models.HistoryPage{}, fmt.Errorf("list history: %w", err)
	}

	return models.HistoryPage{
		Data: records,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// DeleteEntry removes the (item, date) entry. A missing entry yields repository.ErrNotFound.
func (s *Service) DeleteEntry(ctx context.Context, itemName, date string) error {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return validation.Invalid("item_name is required")
	}
	if _, err := models.ParseDate(date); err != nil {
		return validation.Invalid("%v", err)
	}

	unlock := s.locks.Lock(itemName)
	defer unlock()

	if err := s.ledger.Delete(ctx, itemName, date); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete count: %w", err)
	}

	s.logger.Info("count deleted", zap.String("item", itemName), zap.String("date", date))
	return nil
}
