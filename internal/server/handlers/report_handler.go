package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

// ReportService describes the summary and theft-check operations.
type ReportService interface {
	Summarize(ctx context.Context, filter models.DateFilter) ([]models.SummaryRow, error)
	CheckTheft(ctx context.Context, req models.TheftCheckRequest) (models.TheftCheck, error)
}

// ReportHandler serves summaries and theft checks.
type ReportHandler struct {
	svc    ReportService
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Summary aggregates the ledger for ?days=N or ?startDate=&endDate=.
func (h *ReportHandler) Summary(c *gin.Context) {
	var filter models.DateFilter

	if raw, ok := c.GetQuery("days"); ok {
		days, err := models.ParseStrictInt(raw)
		if err != nil {
			writeError(c, h.logger, validation.Invalid("days: %v", err), "")
			return
		}
		filter.Days = &days
	}
	filter.StartDate = c.Query("startDate")
	filter.EndDate = c.Query("endDate")

	rows, err := h.svc.Summarize(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch summary")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// TheftCheck compares declared sales against calculated sales.
func (h *ReportHandler) TheftCheck(c *gin.Context) {
	var payload models.TheftCheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid theft check payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid actual sales count"})
		return
	}

	check, err := h.svc.CheckTheft(c.Request.Context(), payload.ToRequest())
	if err != nil {
		writeError(c, h.logger, err, "Failed to run theft check")
		return
	}
	c.JSON(http.StatusOK, check)
}
