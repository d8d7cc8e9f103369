package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vistudio/studio-cms/internal/service"
)

// MediaHandler exposes the presign endpoint.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// PresignRequest defines the expected JSON for requesting an upload target.
type PresignRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Folder      string `json:"folder" binding:"required"`
}

// Presign issues a short-lived direct-upload URL for one candidate file.
// The response data is {uploadUrl, key, publicUrl}.
func (h *MediaHandler) Presign(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	target, err := h.mediaService.IssueUploadTarget(c.Request.Context(), req.FileName, req.ContentType, req.Folder)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput),
			errors.Is(err, service.ErrTypeNotAllowed),
			errors.Is(err, service.ErrFolderNotAllowed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}

	respondOK(c, http.StatusOK, target)
}
