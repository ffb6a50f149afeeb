package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/memory"
	"github.com/mamadbah2/stocktake/internal/server/handlers"
	"github.com/mamadbah2/stocktake/internal/service/counting"
	"github.com/mamadbah2/stocktake/internal/service/reporting"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	ledger := memory.NewLedger()
	counts := handlers.NewCountHandler(counting.NewService(ledger, time.UTC, nil), nil)
	reports := handlers.NewReportHandler(reporting.NewService(ledger, time.UTC, nil), nil)
	return New(counts, reports, nil, nil)
}

func do(t *testing.T, engine *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestSubmitCountDerivesSales(t *testing.T) {
	engine := newTestEngine(t)

	rec, body := do(t, engine, http.MethodPost, "/api/counts",
		`{"item_name":"Coffee Beans","current_count":100,"restocks_received":0,"date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_first_day"])
	assert.Equal(t, "Initial count recorded!", body["message"])
	assert.EqualValues(t, 100, body["starting_count"])
	assert.EqualValues(t, 0, body["sold_calculated"])

	rec, body = do(t, engine, http.MethodPost, "/api/counts",
		`{"item_name":"Coffee Beans","current_count":"80","restocks_received":"50","date":"2024-03-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["is_first_day"])
	assert.EqualValues(t, 100, body["starting_count"])
	assert.EqualValues(t, 70, body["sold_calculated"])
	assert.Equal(t, "Sales calculated: 70 items sold yesterday!", body["message"])
}

func TestSubmitCountRejectsInvalidPayloads(t *testing.T) {
	engine := newTestEngine(t)

	cases := map[string]string{
		"missing restocks": `{"item_name":"Tea","current_count":5}`,
		"missing item":     `{"current_count":5,"restocks_received":0}`,
		"fractional count": `{"item_name":"Tea","current_count":5.5,"restocks_received":0}`,
		"word count":       `{"item_name":"Tea","current_count":"five","restocks_received":0}`,
		"negative count":   `{"item_name":"Tea","current_count":-1,"restocks_received":0}`,
		"blank item":       `{"item_name":"   ","current_count":1,"restocks_received":0}`,
		"bad date":         `{"item_name":"Tea","current_count":1,"restocks_received":0,"date":"03/01/2024"}`,
		"slash in item":    `{"item_name":"Milk 1/2","current_count":1,"restocks_received":0}`,
		"count too large":  `{"item_name":"Tea","current_count":2147483648,"restocks_received":0}`,
		"not json":         `item_name=Tea`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rec, body := do(t, engine, http.MethodPost, "/api/counts", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}

	rec, _ := do(t, engine, http.MethodGet, "/api/history", "")
	var page models.HistoryPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Zero(t, page.Pagination.Total)
}

func TestTodayListsOnlyTodaysEntries(t *testing.T) {
	engine := newTestEngine(t)

	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Milk","current_count":12,"restocks_received":0,"date":"2020-01-01"}`)
	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Bagels","current_count":30,"restocks_received":0}`)

	req := httptest.NewRequest(http.MethodGet, "/api/counts/today", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.CountRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Bagels", records[0].ItemName)
}

func TestHistoryPagination(t *testing.T) {
	engine := newTestEngine(t)

	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		rec, _ := do(t, engine, http.MethodPost, "/api/counts",
			`{"item_name":"Tea","current_count":10,"restocks_received":0,"date":"`+date+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, _ := do(t, engine, http.MethodGet, "/api/history?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.HistoryPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "2024-03-01", page.Data[0].Date)

	for _, target := range []string{"/api/history?page=0", "/api/history?limit=abc", "/api/history?limit=101"} {
		rec, _ := do(t, engine, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestDeleteEntry(t *testing.T) {
	engine := newTestEngine(t)

	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Tea","current_count":10,"restocks_received":0,"date":"2024-03-01"}`)

	rec, body := do(t, engine, http.MethodDelete, "/api/counts/Tea/2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = do(t, engine, http.MethodDelete, "/api/counts/Ghost%20Item/2099-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Entry not found", body["error"])
}

func TestItemNamesStayDeletableByPath(t *testing.T) {
	engine := newTestEngine(t)

	rec, body := do(t, engine, http.MethodPost, "/api/counts",
		`{"item_name":"Milk 1/2","current_count":4,"restocks_received":0,"date":"2024-03-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], `must not contain "/"`)

	rec, _ = do(t, engine, http.MethodPost, "/api/counts",
		`{"item_name":"Milk half","current_count":4,"restocks_received":0,"date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, engine, http.MethodDelete, "/api/counts/Milk%20half/2024-03-01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestSummaryFilters(t *testing.T) {
	engine := newTestEngine(t)

	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Tea","current_count":20,"restocks_received":0,"date":"2024-03-01"}`)
	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Tea","current_count":15,"restocks_received":5,"date":"2024-03-02"}`)

	rec, _ := do(t, engine, http.MethodGet, "/api/summary?startDate=2024-03-01&endDate=2024-03-02", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Tea", rows[0].ItemName)
	assert.Equal(t, 10, rows[0].TotalSold)
	assert.Equal(t, 5, rows[0].TotalRestocked)
	assert.Equal(t, 15, rows[0].CurrentStock)
	assert.Equal(t, 2, rows[0].DaysTracked)

	for _, target := range []string{
		"/api/summary?days=abc",
		"/api/summary?days=0",
		"/api/summary?days=7&startDate=2024-03-01&endDate=2024-03-02",
		"/api/summary?startDate=2024-03-01",
		"/api/summary?startDate=2024-03-05&endDate=2024-03-01",
		"/api/summary?startDate=2024-13-01&endDate=2024-13-02",
	} {
		rec, _ := do(t, engine, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestTheftCheck(t *testing.T) {
	engine := newTestEngine(t)

	rec, body := do(t, engine, http.MethodPost, "/api/theft-check", `{"calculated_sales":10,"actual_sales":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shortage", body["status"])
	assert.EqualValues(t, 3, body["difference"])

	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Tea","current_count":20,"restocks_received":0,"date":"2024-03-01"}`)
	do(t, engine, http.MethodPost, "/api/counts", `{"item_name":"Tea","current_count":15,"restocks_received":0,"date":"2024-03-02"}`)

	rec, body = do(t, engine, http.MethodPost, "/api/theft-check", `{"item_name":"Tea","date":"2024-03-02","actual_sales":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "match", body["status"])

	rec, _ = do(t, engine, http.MethodPost, "/api/theft-check", `{"item_name":"Tea","date":"2024-03-09","actual_sales":5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/api/theft-check", `{"calculated_sales":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)

	rec, body := do(t, engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = do(t, engine, http.MethodGet, "/webhook?hub.mode=subscribe", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
