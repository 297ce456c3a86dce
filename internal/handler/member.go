package handler

import (
	"fmt"
	"net/http"
	"strings"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct{ members *service.MemberService }

func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// Search handles POST /api/search-member. A memberId wins over name+houseNumber.
func (h *MemberHandler) Search(c *gin.Context) {
	var req model.SearchMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	var (
		m   *model.Member
		err error
	)
	if strings.TrimSpace(req.MemberID) != "" {
		m, err = h.members.FindByID(c.Request.Context(), req.MemberID)
	} else {
		m, err = h.members.FindByNameAndAddress(c.Request.Context(), req.Name, req.HouseNumber)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteAll handles DELETE /api/members
func (h *MemberHandler) DeleteAll(c *gin.Context) {
	n, err := h.members.DeleteAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Warn("members.deleted", "count", n)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted %d members", n), "deleted": n})
}
