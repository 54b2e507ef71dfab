package router

import (
	"fde/internal/middleware"

	"github.com/gin-gonic/gin"
)

// InitDeployRouter registers the deploy trigger and its SSE stream, and
// the status poll (spec §4.6).
func InitDeployRouter(deps RouterDeps, r *gin.RouterGroup) {
	group := r.Group("/").Use(middleware.AuthTokenMiddleware())
	{
		group.POST("/deploy", deps.DeployHandler.Deploy)
		group.GET("/deploy/status", deps.DeployHandler.Status)
	}
}
