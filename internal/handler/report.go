package handler

import (
	"fmt"
	"net/http"

	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct{ reports *service.ReportService }

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard handles GET /api/dashboard/stats
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.reports.DashboardStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Details handles POST /api/report/rsvps/details
func (h *ReportHandler) Details(c *gin.Context) {
	var req model.ProgramEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	details, err := h.reports.MemberDetails(c.Request.Context(), req.ProgramName, req.EventName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Download handles GET /api/report/download/:programName/:eventName
func (h *ReportHandler) Download(c *gin.Context) {
	name, data, err := h.reports.ExportReport(c.Request.Context(), c.Param("programName"), c.Param("eventName"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
