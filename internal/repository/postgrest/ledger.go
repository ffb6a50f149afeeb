// Package postgrest implements the count ledger over a Supabase/PostgREST table.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
)

// Ledger is a resty-backed repository.Ledger talking to PostgREST.
type Ledger struct {
	httpClient *resty.Client
	table      string
	logger     *zap.Logger
}

var _ repository.Ledger = (*Ledger)(nil)

type upsertRow struct {
	ItemName         string `json:"item_name"`
	Date             string `json:"date"`
	YesterdayCount   int    `json:"yesterday_count"`
	CurrentCount     int    `json:"current_count"`
	RestocksReceived int    `json:"restocks_received"`
	SoldCalculated   int    `json:"sold_calculated"`
}

// NewLedger builds the client and verifies the table is reachable.
func NewLedger(ctx context.Context, cfg config.SupabaseConfig, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, errors.New("supabase url and api key must be provided")
	}

	base := strings.TrimSuffix(cfg.URL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base+"/rest/v1").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	table := cfg.Table
	if table == "" {
		table = "history"
	}

	l := &Ledger{httpClient: restyClient, table: table, logger: logger}

	var probe []models.CountRecord
	if _, err := l.do(ctx, http.MethodGet, url.Values{"select": {"id"}, "limit": {"1"}}, nil, nil, &probe); err != nil {
		return nil, fmt.Errorf("failed to reach supabase table %s: %w", table, err)
	}

	return l, nil
}

func (l *Ledger) Get(ctx context.Context, itemName, date string) (models.CountRecord, error) {
	var rows []models.CountRecord
	query := url.Values{
		"select":    {"*"},
		"item_name": {"eq." + itemName},
		"date":      {"eq." + date},
		"limit":     {"1"},
	}
	if _, err := l.do(ctx, http.MethodGet, query, nil, nil, &rows); err != nil {
		return models.CountRecord{}, fmt.Errorf("get count %s/%s: %w", itemName, date, err)
	}
	if len(rows) == 0 {
		return models.CountRecord{}, repository.ErrNotFound
	}
	return rows[0], nil
}

func (l *Ledger) Upsert(ctx context.Context, record models.CountRecord) (models.CountRecord, error) {
	body := upsertRow{
		ItemName:         record.ItemName,
		Date:             record.Date,
		YesterdayCount:   record.YesterdayCount,
		CurrentCount:     record.CurrentCount,
		RestocksReceived: record.RestocksReceived,
		SoldCalculated:   record.SoldCalculated,
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=representation"}
	query := url.Values{"on_conflict": {"item_name,date"}}

	var rows []models.CountRecord
	if _, err := l.do(ctx, http.MethodPost, query, headers, body, &rows); err != nil {
		return models.CountRecord{}, fmt.Errorf("upsert count %s/%s: %w", record.ItemName, record.Date, err)
	}
	if len(rows) == 0 {
		return models.CountRecord{}, fmt.Errorf("upsert count %s/%s: empty representation", record.ItemName, record.Date)
	}
	return rows[0], nil
}

func (l *Ledger) ListByDate(ctx context.Context, date string) ([]models.CountRecord, error) {
	rows := make([]models.CountRecord, 0)
	query := url.Values{
		"select": {"*"},
		"date":   {"eq." + date},
		"order":  {"item_name.asc"},
	}
	if _, err := l.do(ctx, http.MethodGet, query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("list counts for %s: %w", date, err)
	}
	return rows, nil
}

func (l *Ledger) ListPage(ctx context.Context, offset, limit int) ([]models.CountRecord, int, error) {
	rows := make([]models.CountRecord, 0)
	query := url.Values{
		"select": {"*"},
		"order":  {"date.desc,item_name.asc,id.desc"},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	headers := map[string]string{"Prefer": "count=exact"}

	resp, err := l.do(ctx, http.MethodGet, query, headers, nil, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list history page: %w", err)
	}

	total, err := parseContentRangeTotal(resp.Header().Get("Content-Range"))
	if err != nil {
		return nil, 0, fmt.Errorf("list history page: %w", err)
	}
	return rows, total, nil
}

func (l *Ledger) ListRange(ctx context.Context, from, to string) ([]models.CountRecord, error) {
	rows := make([]models.CountRecord, 0)
	query := url.Values{
		"select": {"*"},
		"order":  {"id.asc"},
	}
	if from != "" {
		query.Add("date", "gte."+from)
	}
	if to != "" {
		query.Add("date", "lte."+to)
	}
	if _, err := l.do(ctx, http.MethodGet, query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("list counts in range [%s, %s]: %w", from, to, err)
	}
	return rows, nil
}

func (l *Ledger) Delete(ctx context.Context, itemName, date string) error {
	var rows []models.CountRecord
	query := url.Values{
		"item_name": {"eq." + itemName},
		"date":      {"eq." + date},
	}
	headers := map[string]string{"Prefer": "return=representation"}
	if _, err := l.do(ctx, http.MethodDelete, query, headers, nil, &rows); err != nil {
		return fmt.Errorf("delete count %s/%s: %w", itemName, date, err)
	}
	if len(rows) == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (l *Ledger) Close(context.Context) error { return nil }

// apiError is the PostgREST error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (l *Ledger) do(ctx context.Context, method string, query url.Values, headers map[string]string, body any, result any) (*resty.Response, error) {
	apiErr := new(apiError)

	req := l.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeaders(headers).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, "/"+l.table)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		l.logger.Debug("supabase request failed",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode()),
			zap.String("code", apiErr.Code))
		return nil, fmt.Errorf("supabase api error: status=%d, code=%s, message=%s", resp.StatusCode(), apiErr.Code, message)
	}

	return resp, nil
}

// parseContentRangeTotal extracts the total from headers such as "0-9/42" or "*/0".
func parseContentRangeTotal(header string) (int, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("missing total in content-range %q", header)
	}
	total, err := strconv.Atoi(header[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid total in content-range %q: %w", header, err)
	}
	return total, nil
}
