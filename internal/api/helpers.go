package api

import "github.com/gin-gonic/gin"

// All responses share the {success, data|error} envelope the admin UI and
// the ingest client expect.

func respondOK(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}
