package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

// Service exposes summaries and theft checks over the count ledger.
type Service struct {
	ledger    repository.Ledger
	validator *validation.Validator
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance.
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
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Window resolves a filter into inclusive [from, to] bounds. Empty bounds are open.
func (s *Service) Window(filter models.DateFilter) (string, string, error) {
	hasRange := filter.StartDate != "" || filter.EndDate != ""

	switch {
	case filter.Days != nil && hasRange:
		return "", "", validation.Invalid("use either days or startDate/endDate, not both")
	case filter.Days != nil:
		if *filter.Days <= 0 {
			return "", "", validation.Invalid("days must be positive")
		}
		from := s.now().In(s.loc).AddDate(0, 0, -*filter.Days)
		return models.FormatDate(from), "", nil
	case hasRange:
		if filter.StartDate == "" || filter.EndDate == "" {
			return "", "", validation.Invalid("startDate and endDate must be given together")
		}
		start, err := models.ParseDate(filter.StartDate)
		if err != nil {
			return "", "", validation.Invalid("startDate: %v", err)
		}
		end, err := models.ParseDate(filter.EndDate)
		if err != nil {
			return "", "", validation.Invalid("endDate: %v", err)
		}
		if start.After(end) {
			return "", "", validation.Invalid("startDate must not be after endDate")
		}
		return models.FormatDate(start), models.FormatDate(end), nil
	default:
		return "", "", nil
	}
}

// Summarize aggregates the ledger entries selected by filter per item.
func (s *Service) Summarize(ctx context.Context, filter models.DateFilter) ([]models.SummaryRow, error) {
	from, to, err := s.Window(filter)
	if err != nil {
		return nil, err
	}

	records, err := s.ledger.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load summary window: %w", err)
	}

	rows := Aggregate(records)
	s.logger.Debug("summary computed",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("records", len(records)),
		zap.Int("items", len(rows)))
	return rows, nil
}

// CheckTheft compares declared sales with calculated sales. When the request
// carries no calculated value it is read from the ledger entry for
// (item, date), date defaulting to today.
func (s *Service) CheckTheft(ctx context.Context, req models.TheftCheckRequest) (models.TheftCheck, error) {
	req.ItemName = strings.TrimSpace(req.ItemName)
	if err := s.validator.Struct(req); err != nil {
		return models.TheftCheck{}, err
	}

	if req.CalculatedSales != nil {
		check := Compare(*req.CalculatedSales, req.ActualSales)
		check.ItemName = req.ItemName
		check.Date = req.Date
		return check, nil
	}

	date := req.Date
	if date == "" {
		date = models.Today(s.now(), s.loc)
	}

	rec, err := s.ledger.Get(ctx, req.ItemName, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.TheftCheck{}, err
		}
		return models.TheftCheck{}, fmt.Errorf("load count for theft check: %w", err)
	}

	check := Compare(rec.SoldCalculated, req.ActualSales)
	check.ItemName = rec.ItemName
	check.Date = rec.Date

	if check.Status == models.TheftShortage {
		s.logger.Warn("sales shortage detected",
			zap.String("item", rec.ItemName),
			zap.String("date", rec.Date),
			zap.Int("difference", check.Difference))
	}
	return check, nil
}

// Digest renders a plain-text summary of the last days for notifications.
func (s *Service) Digest(ctx context.Context, days int) (string, []models.SummaryRow, error) {
	rows, err := s.Summarize(ctx, models.DateFilter{Days: &days})
	if err != nil {
		return "", nil, err
	}

	today := models.Today(s.now(), s.loc)
	if len(rows) == 0 {
		return fmt.Sprintf("Stock summary (last %d days to %s): no counts recorded.", days, today), rows, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock summary (last %d days to %s):", days, today)
	for _, row := range rows {
		fmt.Fprintf(&b, "\n- %s: sold %d, restocked %d, in stock %d, turnover %.2f%%",
			row.ItemName, row.TotalSold, row.TotalRestocked, row.CurrentStock, row.TurnoverRate)
	}
	return b.String(), rows, nil
}
