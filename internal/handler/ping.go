package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingHandler answers GET /ping, unauthenticated (spec §4.7).
type PingHandler struct {
	*Handler
}

func NewPingHandler(handler *Handler) *PingHandler {
	return &PingHandler{Handler: handler}
}

func (h *PingHandler) Ping(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}
