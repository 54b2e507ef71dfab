package router

import "github.com/gin-gonic/gin"

// InitSystemRouter registers the unauthenticated liveness endpoints.
func InitSystemRouter(deps RouterDeps, r *gin.RouterGroup) {
	noAuthRouter := r.Group("/")
	{
		noAuthRouter.GET("/ping", deps.PingHandler.Ping)
		noAuthRouter.GET("/health", deps.HealthHandler.Health)
	}
}
