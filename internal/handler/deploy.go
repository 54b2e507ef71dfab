package handler

import (
	"context"
	"net/http"
	"strconv"

	v1 "fde/api/v1"
	"fde/internal/deploy"
	"fde/internal/deployconfig"
	"fde/internal/service"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeployHandler serves POST /deploy and GET /deploy/status (spec §4.6).
type DeployHandler struct {
	*Handler
	cfg           *deployconfig.ResolvedConfig
	deployService service.DeployService
}

func NewDeployHandler(handler *Handler, cfg *deployconfig.ResolvedConfig, deployService service.DeployService) *DeployHandler {
	return &DeployHandler{Handler: handler, cfg: cfg, deployService: deployService}
}

func (h *DeployHandler) Deploy(ctx *gin.Context) {
	var req v1.DeployRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}

	env, ok := resolveEnv(ctx, h.cfg, req.Env)
	if !ok {
		return
	}

	if !req.Stream {
		h.runSync(ctx, env)
		return
	}

	lastEventIDHeader := ctx.GetHeader("Last-Event-ID")
	var lastEventID uint64
	if lastEventIDHeader != "" {
		parsed, err := strconv.ParseUint(lastEventIDHeader, 10, 64)
		if err != nil {
			v1.HandleError(ctx, http.StatusBadRequest, err, nil)
			return
		}
		lastEventID = parsed
	} else {
		if err := h.deployService.StartStream(env); err != nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	h.streamEvents(ctx, env.Name, lastEventID)
}

func (h *DeployHandler) runSync(ctx *gin.Context, env *deployconfig.Environment) {
	result, err := h.deployService.RunSync(ctx.Request.Context(), env)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	if result.Success {
		v1.HandleSuccess(ctx, v1.DeploySyncResponse{Success: true, Stdout: result.Stdout, Stderr: result.Stderr})
		return
	}
	v1.HandleErrorDetail(ctx, http.StatusInternalServerError, "deploy command exited non-zero", gin.H{
		"stdout":   result.Stdout,
		"stderr":   result.Stderr,
		"exitCode": result.ExitCode,
	})
}

// streamEvents writes an SSE frame per event as the deploy manager
// produces them. A client disconnect only stops this handler from writing
// further frames — per spec §5 it must never cancel the deploy itself,
// which Subscribe already guarantees by running independently of this
// request's context.
func (h *DeployHandler) streamEvents(ctx *gin.Context, envName string, lastEventID uint64) {
	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.WriteHeader(http.StatusOK)
	ctx.Writer.Flush()

	flusher, _ := ctx.Writer.(http.Flusher)

	emit := func(ev deploy.Event) error {
		frame := sse.Event{
			Id:    strconv.FormatUint(ev.ID, 10),
			Event: string(ev.Event),
			Data:  string(ev.Data),
		}
		if err := frame.Render(ctx.Writer); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := h.deployService.Subscribe(ctx.Request.Context(), envName, lastEventID, emit)
	if err != nil && err != context.Canceled {
		h.logger.WithContext(ctx).Error("deploy stream ended with error", zap.Error(err))
	}
}

func (h *DeployHandler) Status(ctx *gin.Context) {
	envName := ctx.Query("env")
	if _, ok := resolveEnv(ctx, h.cfg, envName); !ok {
		return
	}

	snap := h.deployService.Status(envName)
	resp := v1.DeployStatusResponse{
		Env:           envName,
		Running:       snap.Running,
		BufferedCount: snap.BufferedCount,
	}
	if snap.HasStartTime {
		resp.StartTime = snap.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if snap.LastResult != nil {
		resp.LastResult = &v1.DeployLastResult{
			Success:   snap.LastResult.Success,
			StartTime: snap.LastResult.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			EndTime:   snap.LastResult.EndTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			ExitCode:  snap.LastResult.ExitCode,
		}
	}
	v1.HandleSuccess(ctx, resp)
}
