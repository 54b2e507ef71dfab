package handler

import (
	"net/http"

	"fde/internal/auth"
	"fde/internal/deployconfig"
	"fde/internal/middleware"

	"github.com/gin-gonic/gin"
)

// resolveEnv runs the validator of spec §4.2 against envName and the
// request's Authorization header, writing the appropriate error response
// and returning ok=false on failure. Every protected handler calls this
// before touching its service.
func resolveEnv(ctx *gin.Context, cfg *deployconfig.ResolvedConfig, envName string) (*deployconfig.Environment, bool) {
	result := auth.Validate(envName, middleware.AuthToken(ctx), cfg)
	if result.Valid {
		return result.Env, true
	}

	// Spec §4.2/§7: items 1-3 (missing/unknown env, no token configured) are
	// 400-class; items 4-5 (missing/incorrect caller token) are 403-class.
	// "no token configured for environment" deliberately contains the word
	// "token" too, so the status is keyed off the exact message rather than
	// a bare substring match.
	status := http.StatusBadRequest
	switch result.Error {
	case "missing authorization token", "invalid token":
		status = http.StatusForbidden
	}
	ctx.JSON(status, gin.H{"error": result.Error})
	return nil, false
}
