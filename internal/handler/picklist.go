package handler

import (
	"net/http"

	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

type PickListHandler struct{ picks *service.PickListService }

func NewPickListHandler(picks *service.PickListService) *PickListHandler {
	return &PickListHandler{picks: picks}
}

// ListPrograms handles GET /api/programs
func (h *PickListHandler) ListPrograms(c *gin.Context) {
	picks, err := h.picks.ListProgramNames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, picks)
}

// AddProgram handles POST /api/programs
func (h *PickListHandler) AddProgram(c *gin.Context) {
	var req model.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	pick, err := h.picks.AddProgramName(c.Request.Context(), req.ProgramName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pick)
}

// ListEvents handles GET /api/events
func (h *PickListHandler) ListEvents(c *gin.Context) {
	picks, err := h.picks.ListEventNames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, picks)
}

// AddEvent handles POST /api/events
func (h *PickListHandler) AddEvent(c *gin.Context) {
	var req model.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	pick, err := h.picks.AddEventName(c.Request.Context(), req.EventName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pick)
}
