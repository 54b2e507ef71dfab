package router

import (
	"fde/internal/middleware"

	"github.com/gin-gonic/gin"
)

// InitVerifyRouter registers the environment/token preflight check. Token
// validity is decided per environment inside the handler, not by a route
// guard, so the only middleware needed here captures the Authorization
// header for that later check.
func InitVerifyRouter(deps RouterDeps, r *gin.RouterGroup) {
	group := r.Group("/").Use(middleware.AuthTokenMiddleware())
	{
		group.POST("/verify", deps.VerifyHandler.Verify)
	}
}
