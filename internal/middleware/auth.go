package middleware

import (
	"github.com/gin-gonic/gin"
)

const authTokenContextKey = "fde-auth-token"

// AuthTokenMiddleware lifts the Authorization header into the gin.Context
// so handlers can hand it straight to internal/auth.Validate, the single
// entry point spec §4.2 names. It deliberately does not reject anything
// itself: which field on the request carries the target environment name
// varies per endpoint (query string, JSON body, multipart form), so the
// actual validation call happens in the handler once it has parsed that.
func AuthTokenMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(authTokenContextKey, ctx.GetHeader("Authorization"))
		ctx.Next()
	}
}

// AuthToken reads the token AuthTokenMiddleware stashed on ctx.
func AuthToken(ctx *gin.Context) string {
	v, ok := ctx.Get(authTokenContextKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
