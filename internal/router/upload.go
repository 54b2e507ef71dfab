package router

import (
	"fde/internal/middleware"

	"github.com/gin-gonic/gin"
)

// InitUploadRouter registers both the chunked upload protocol (spec §4.3)
// and the whole-file shortcut (spec §4.7).
func InitUploadRouter(deps RouterDeps, r *gin.RouterGroup) {
	group := r.Group("/").Use(middleware.AuthTokenMiddleware())
	{
		group.POST("/upload", deps.UploadHandler.SaveWhole)
		group.POST("/upload-stream", deps.UploadHandler.UploadStream)
		group.POST("/upload/init", deps.UploadHandler.Init)
		group.POST("/upload/chunk", deps.UploadHandler.Chunk)
		group.POST("/upload/complete", deps.UploadHandler.Complete)
		group.GET("/upload/status", deps.UploadHandler.Status)
		group.DELETE("/upload/cancel", deps.UploadHandler.Cancel)
	}
}
