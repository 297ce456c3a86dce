package handler

import (
	"net/http"
	"strconv"
	"strings"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ catalog *service.CatalogService }

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// AddProgram handles POST /api/programs-catalog
func (h *CatalogHandler) AddProgram(c *gin.Context) {
	var req model.AddProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	prog, err := h.catalog.AddProgram(c.Request.Context(), req.ProgName, req.Events)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("catalog.program_saved", "program", prog.ProgName, "events", len(prog.Events))
	c.JSON(http.StatusCreated, prog)
}

// ListPrograms handles GET /api/programs-catalog
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	progs, err := h.catalog.ListPrograms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, progs)
}

// OpenEvents handles GET /api/programs-catalog/open-events
func (h *CatalogHandler) OpenEvents(c *gin.Context) {
	events, err := h.catalog.ListOpenEvents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// EventsForProgram handles GET /api/programs-catalog/events?progname=&status=Open,Closed
func (h *CatalogHandler) EventsForProgram(c *gin.Context) {
	progname := strings.TrimSpace(c.Query("progname"))
	if progname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progname is required"})
		return
	}
	var statuses []model.EventStatus
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, model.EventStatus(s))
		}
	}
	events, err := h.catalog.ListEventsForProgram(c.Request.Context(), progname, statuses)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// UpdateStatus handles PUT /api/programs-catalog/:programId/events/:eventId/status
func (h *CatalogHandler) UpdateStatus(c *gin.Context) {
	programID, err1 := strconv.ParseUint(c.Param("programId"), 10, 64)
	eventID, err2 := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ev, err := h.catalog.UpdateEventStatus(c.Request.Context(), uint(programID), uint(eventID), req.EventStatus)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("catalog.status_updated", "event_id", ev.ID, "status", ev.EventStatus)
	c.JSON(http.StatusOK, ev)
}

// CompletedEvents handles GET /api/completed-events
func (h *CatalogHandler) CompletedEvents(c *gin.Context) {
	events, err := h.catalog.ListCompletedEvents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// MarkCompleted handles POST /api/completed-events
func (h *CatalogHandler) MarkCompleted(c *gin.Context) {
	var req model.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ev, err := h.catalog.UpdateEventStatus(c.Request.Context(), req.ProgramID, req.EventID, model.StatusCompleted)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}
