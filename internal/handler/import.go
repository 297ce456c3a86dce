package handler

import (
	"fmt"
	"io"
	"net/http"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type ImportHandler struct{ imports *service.ImportService }

func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Upload handles POST /api/update-database, parse and store in one step
func (h *ImportHandler) Upload(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	n, err := h.imports.Import(c.Request.Context(), name, data, replaceMode(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  fmt.Sprintf("Imported %d members", n),
		"imported": n,
	})
}

// Preview handles POST /api/update-database/preview, validate and return a confirmation token
func (h *ImportHandler) Preview(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	preview, err := h.imports.Preview(c.Request.Context(), name, data, replaceMode(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Confirm handles POST /api/update-database/confirm
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	n, err := h.imports.Confirm(c.Request.Context(), req.Token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  fmt.Sprintf("Imported %d members", n),
		"imported": n,
	})
}

func readUpload(c *gin.Context) (string, []byte, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please upload a file"})
		return "", nil, false
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is larger than 10 MB"})
		return "", nil, false
	}
	logger.FromContext(c.Request.Context()).Info("import.upload", "file", file.Filename, "size", file.Size)

	f, err := file.Open()
	if err != nil {
		writeError(c, fmt.Errorf("open upload: %w", err))
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, fmt.Errorf("read upload: %w", err))
		return "", nil, false
	}
	return file.Filename, data, true
}

func replaceMode(c *gin.Context) bool { return c.Query("mode") == "replace" }
