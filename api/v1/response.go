// Package v1 holds the request/response DTOs and the two response helpers
// every handler funnels through, mirroring the teacher's api/v1 package
// name and its handler-calls-v1.HandleSuccess/HandleError convention.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleSuccess writes payload as the flat JSON body. payload is typically
// a struct or a map[string]interface{}; this project's success bodies are
// never wrapped in an envelope (spec §6/§7).
func HandleSuccess(ctx *gin.Context, payload interface{}) {
	if payload == nil {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.JSON(http.StatusOK, payload)
}

// HandleError writes {error, ...context} at the given status, the shape
// spec §7 names explicitly. context may be nil; any key it supplies other
// than "error" is merged in alongside it.
func HandleError(ctx *gin.Context, status int, err error, context map[string]string) {
	body := gin.H{"error": err.Error()}
	for k, v := range context {
		if k == "error" {
			continue
		}
		body[k] = v
	}
	ctx.JSON(status, body)
}

// HandleErrorDetail is HandleError with an arbitrary (non-string) details
// payload — used by the execution-failure body, which carries stdout,
// stderr, and an integer exit code alongside the error (spec §7).
func HandleErrorDetail(ctx *gin.Context, status int, message string, details gin.H) {
	body := gin.H{"error": message}
	for k, v := range details {
		if k == "error" {
			continue
		}
		body[k] = v
	}
	ctx.JSON(status, body)
}
