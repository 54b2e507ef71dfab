package handler

import (
	"net/http"

	v1 "fde/api/v1"
	"fde/internal/deployconfig"

	"github.com/gin-gonic/gin"
)

// VerifyHandler answers POST /verify: validate env + token, nothing else
// (spec §4.7).
type VerifyHandler struct {
	*Handler
	cfg *deployconfig.ResolvedConfig
}

func NewVerifyHandler(handler *Handler, cfg *deployconfig.ResolvedConfig) *VerifyHandler {
	return &VerifyHandler{Handler: handler, cfg: cfg}
}

func (h *VerifyHandler) Verify(ctx *gin.Context) {
	var req v1.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}

	env, ok := resolveEnv(ctx, h.cfg, req.Env)
	if !ok {
		return
	}

	v1.HandleSuccess(ctx, v1.VerifyResponse{Success: true, Env: env.Name})
}
