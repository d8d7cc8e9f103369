package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vistudio/studio-cms/internal/service"
)

// SetupRoutes wires the CMS API onto the router. Authentication is handled
// by the fronting proxy, not here.
func SetupRoutes(router *gin.Engine, mediaService service.MediaService) {
	mediaHandler := NewMediaHandler(mediaService)
	assetHandler := NewAssetHandler(mediaService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		mediaGroup := apiV1.Group("/media")
		{
			// POST /api/v1/media/presign
			mediaGroup.POST("/presign", mediaHandler.Presign)
		}

		assetGroup := apiV1.Group("/assets")
		{
			// One uniform surface for all six admin screens; :collection is
			// portfolio|reels|thumbnails|showreel|about|team.
			assetGroup.GET("/:collection", assetHandler.ListAssets)
			assetGroup.POST("/:collection", assetHandler.CommitAsset)
			assetGroup.PATCH("/:collection/:id", assetHandler.UpdateAsset)
			assetGroup.DELETE("/:collection/:id", assetHandler.DeleteAsset)
		}
	}
}
