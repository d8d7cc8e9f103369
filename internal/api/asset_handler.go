package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vistudio/studio-cms/internal/domain"
	"vistudio/studio-cms/internal/repository"
	"vistudio/studio-cms/internal/service"
)

// AssetHandler holds the media service dependency for asset CRUD.
type AssetHandler struct {
	mediaService service.MediaService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(mediaService service.MediaService) *AssetHandler {
	return &AssetHandler{mediaService: mediaService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CommitAssetRequest defines the expected JSON for committing an uploaded
// asset. assetUrl/assetKey come from the presign step; the rest are the
// screen's domain fields.
type CommitAssetRequest struct {
	AssetURL    string `json:"assetUrl" binding:"required,url"`
	AssetKey    string `json:"assetKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	SortOrder   int    `json:"sortOrder"`
	Active      *bool  `json:"active"`
}

// UpdateAssetRequest carries partial updates; absent fields stay untouched.
type UpdateAssetRequest struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	SortOrder *int    `json:"sortOrder"`
	Active    *bool   `json:"active"`
}

// AssetResponse is the DTO for returning asset details.
type AssetResponse struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	AssetURL    string    `json:"assetUrl"`
	FileName    string    `json:"fileName,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Title       string    `json:"title,omitempty"`
	Category    string    `json:"category,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapAssetToResponse converts a domain.Asset to AssetResponse DTO.
func MapAssetToResponse(a *domain.Asset) AssetResponse {
	if a == nil {
		return AssetResponse{}
	}
	return AssetResponse{
		ID:          a.ID.Hex(),
		Collection:  string(a.Collection),
		AssetURL:    a.AssetURL,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		Title:       a.Title,
		Category:    a.Category,
		SortOrder:   a.SortOrder,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// MapAssetsToResponse converts a slice of domain.Asset to response DTOs.
func MapAssetsToResponse(assets []domain.Asset) []AssetResponse {
	responses := make([]AssetResponse, len(assets))
	for i := range assets {
		responses[i] = MapAssetToResponse(&assets[i])
	}
	return responses
}

func collectionParam(c *gin.Context) (domain.Collection, bool) {
	col := domain.Collection(c.Param("collection"))
	if !col.Valid() {
		abortWithError(c, http.StatusNotFound, "Unknown asset collection.")
		return "", false
	}
	return col, true
}

// --- Handler Methods ---

// CommitAsset persists the record for a completed direct upload.
func (h *AssetHandler) CommitAsset(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}

	var req CommitAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	asset := &domain.Asset{
		Collection:  col,
		AssetURL:    req.AssetURL,
		AssetKey:    req.AssetKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Title:       req.Title,
		Category:    req.Category,
		SortOrder:   req.SortOrder,
		Active:      active,
	}

	created, err := h.mediaService.CommitAsset(c.Request.Context(), asset)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to save asset.")
		return
	}

	respondOK(c, http.StatusCreated, MapAssetToResponse(created))
}

// ListAssets returns all assets of one collection. ?active=true filters to
// the publicly visible subset the marketing pages render.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}

	activeOnly := c.Query("active") == "true"

	assets, err := h.mediaService.ListAssets(c.Request.Context(), col, activeOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list assets.")
		return
	}

	respondOK(c, http.StatusOK, MapAssetsToResponse(assets))
}

// UpdateAsset applies a partial update to one asset's domain fields.
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	if _, ok := collectionParam(c); !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid asset ID format.")
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	asset, err := h.mediaService.UpdateAsset(c.Request.Context(), id, repository.AssetUpdate{
		Title:     req.Title,
		Category:  req.Category,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	})
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			abortWithError(c, http.StatusNotFound, "Asset not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update asset.")
		return
	}

	respondOK(c, http.StatusOK, MapAssetToResponse(asset))
}

// DeleteAsset removes the record and its stored object.
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if _, ok := collectionParam(c); !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid asset ID format.")
		return
	}

	if err := h.mediaService.DeleteAsset(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			abortWithError(c, http.StatusNotFound, "Asset not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete asset.")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": id.Hex()})
}
