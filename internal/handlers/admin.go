package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jhruby/digplan/internal/services"
	"github.com/jhruby/digplan/pkg/logger"
)

type AdminHandler struct {
	batchService  *services.ConflictBatchService
	reportService *services.ConflictReportService
}

func NewAdminHandler(batchService *services.ConflictBatchService, reportService *services.ConflictReportService) *AdminHandler {
	return &AdminHandler{
		batchService:  batchService,
		reportService: reportService,
	}
}

// RecheckConflicts triggers a batch re-evaluation of all active
// projects in the background
func (h *AdminHandler) RecheckConflicts(c *gin.Context) {
	go func() {
		outcomes, err := h.batchService.RunAllActive(context.Background())
		if err != nil {
			logger.WithError(err).Error("Administrative conflict re-check failed")
			return
		}
		failed := 0
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				failed++
			}
		}
		logger.WithFields(map[string]interface{}{
			"projects": len(outcomes),
			"failed":   failed,
		}).Info("Administrative conflict re-check finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "recheck started"})
}

// ConflictReport streams the conflict register as an Excel workbook
func (h *AdminHandler) ConflictReport(c *gin.Context) {
	report, err := h.reportService.GenerateConflictReport()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+h.reportService.ReportFilename())
	if err := report.Write(c.Writer); err != nil {
		logger.WithError(err).Error("Failed to stream conflict report")
	}
}
