package handler

import (
	"time"

	v1 "fde/api/v1"

	"github.com/gin-gonic/gin"
)

// Version is set at build time via -ldflags; "dev" otherwise.
var Version = "dev"

// HealthHandler answers GET /health, unauthenticated (spec §4.7).
type HealthHandler struct {
	*Handler
	startedAt time.Time
}

func NewHealthHandler(handler *Handler) *HealthHandler {
	return &HealthHandler{Handler: handler, startedAt: time.Now()}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	now := time.Now()
	v1.HandleSuccess(ctx, v1.HealthResponse{
		Status:    "ok",
		Uptime:    now.Sub(h.startedAt).String(),
		Version:   Version,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}
