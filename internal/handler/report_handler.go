package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "timesaver/backend/internal/errors"
	"timesaver/backend/internal/export"
	"timesaver/backend/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
	pdf           *export.PDFRenderer
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, pdf *export.PDFRenderer, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, pdf: pdf, logger: logger.Named("reports")}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	dashboard, apiErr := h.reportService.Dashboard(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *ReportHandler) Advice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	advice, apiErr := h.reportService.Advice(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	h.export(c, "text/csv; charset=utf-8", "activities.csv", export.WriteCSV)
}

func (h *ReportHandler) ExportPDF(c *gin.Context) {
	h.export(c, "application/pdf", "activities_report.pdf", h.pdf.Write)
}

// export renders into memory first so a render failure can still be
// reported as a JSON error instead of a truncated download.
func (h *ReportHandler) export(
	c *gin.Context,
	contentType, filename string,
	render func(w io.Writer, r export.Report) error,
) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, apiErr := h.reportService.ExportReport(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, *report); err != nil {
		h.logger.Error("render export", zap.String("file", filename), zap.String("user_id", userID), zap.Error(err))
		writeError(c, apperrors.Internal("failed to render export"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
