package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// RowAppender is the subset of the Sheets API the exporter relies on.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// SummaryExporter writes summary rows into a spreadsheet.
type SummaryExporter struct {
	appender     RowAppender
	summaryRange string
	logger       *zap.Logger
}

// NewSummaryExporter builds an exporter over the given appender.
func NewSummaryExporter(appender RowAppender, summaryRange string, logger *zap.Logger) *SummaryExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryExporter{appender: appender, summaryRange: summaryRange, logger: logger}
}

// ExportSummary appends one spreadsheet row per summary row, stamped with the report date.
func (e *SummaryExporter) ExportSummary(ctx context.Context, reportDate string, rows []models.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, []interface{}{
			reportDate,
			row.ItemName,
			row.TotalSold,
			row.TotalRestocked,
			row.AvgStartingStock,
			row.TotalStock,
			row.CurrentStock,
			row.DaysTracked,
			row.TurnoverRate,
		})
	}

	if err := e.appender.AppendRows(ctx, e.summaryRange, values); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}

	e.logger.Info("summary exported", zap.String("date", reportDate), zap.Int("rows", len(values)))
	return nil
}

// GoogleSheetRepository implements RowAppender using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed appender.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows appends the provided rows to the supplied sheet range.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}
