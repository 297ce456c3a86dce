package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

type RsvpHandler struct{ rsvp *service.RsvpService }

func NewRsvpHandler(rsvp *service.RsvpService) *RsvpHandler { return &RsvpHandler{rsvp: rsvp} }

// Submit handles POST /api/rsvp
func (h *RsvpHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	res, err := h.rsvp.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Verify handles GET /api/rsvp/:code
func (h *RsvpHandler) Verify(c *gin.Context) {
	views, err := h.rsvp.FindByConfirmationCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// QRCode handles GET /api/rsvp/:code/qrcode
func (h *RsvpHandler) QRCode(c *gin.Context) {
	png, err := h.rsvp.ConfirmationQR(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// UpdateCounts handles PUT /api/rsvp/:id
func (h *RsvpHandler) UpdateCounts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req model.UpdateCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	row, err := h.rsvp.UpdateCounts(c.Request.Context(), uint(id), req.RsvpConfNumber, req.RsvpCount, req.KidsRsvpCount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP updated successfully", "response": row})
}

// Clear handles POST /api/clear-rsvp
func (h *RsvpHandler) Clear(c *gin.Context) {
	var req model.ClearRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c)
			return
		}
	}
	res, err := h.rsvp.ClearCompleted(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
