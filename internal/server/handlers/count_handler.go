package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

// CountService describes the ledger operations the HTTP layer can perform.
type CountService interface {
	RecordDailyCount(ctx context.Context, in models.SubmitCount) (models.CountResult, error)
	ListToday(ctx context.Context) ([]models.CountRecord, error)
	ListHistory(ctx context.Context, page, limit int) (models.HistoryPage, error)
	DeleteEntry(ctx context.Context, itemName, date string) error
}

// CountHandler serves count submission, listing and deletion.
type CountHandler struct {
	svc    CountService
	logger *zap.Logger
}

// NewCountHandler constructs the HTTP handler adapter.
func NewCountHandler(svc CountService, logger *zap.Logger) *CountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountHandler{svc: svc, logger: logger}
}

// Submit records a daily count and returns the derived record.
func (h *CountHandler) Submit(c *gin.Context) {
	var payload models.CountPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid count payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid required fields: item_name, current_count, restocks_received"})
		return
	}

	result, err := h.svc.RecordDailyCount(c.Request.Context(), payload.ToSubmit())
	if err != nil {
		writeError(c, h.logger, err, "Failed to save count")
		return
	}

	rec := result.Record
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           result.Message,
		"item_name":         rec.ItemName,
		"date":              rec.Date,
		"starting_count":    rec.YesterdayCount,
		"current_count":     rec.CurrentCount,
		"restocks_received": rec.RestocksReceived,
		"sold_calculated":   rec.SoldCalculated,
		"is_first_day":      result.IsFirstDay,
		"record":            rec,
	})
}

// Today lists the entries recorded today.
func (h *CountHandler) Today(c *gin.Context) {
	records, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch today's counts")
		return
	}
	c.JSON(http.StatusOK, records)
}

// History lists one page of the ledger.
func (h *CountHandler) History(c *gin.Context) {
	page, err := positiveQueryInt(c, "page")
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}
	limit, err := positiveQueryInt(c, "limit")
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	result, err := h.svc.ListHistory(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete removes the entry addressed by item name and date.
func (h *CountHandler) Delete(c *gin.Context) {
	itemName := c.Param("itemName")
	date := c.Param("date")

	if err := h.svc.DeleteEntry(c.Request.Context(), itemName, date); err != nil {
		writeError(c, h.logger, err, "Failed to delete entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Entry deleted successfully"})
}

// positiveQueryInt returns 0 when the parameter is absent.
func positiveQueryInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, nil
	}
	value, err := models.ParseStrictInt(raw)
	if err != nil {
		return 0, validation.Invalid("%s: %v", name, err)
	}
	if value < 1 {
		return 0, validation.Invalid("%s must be positive", name)
	}
	return value, nil
}

// writeError maps service errors to HTTP responses. Persistence failures are
// logged and reported with the opaque fallback message.
func writeError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
