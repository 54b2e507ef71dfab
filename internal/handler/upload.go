package handler

import (
	"errors"
	"net/http"
	"strconv"

	v1 "fde/api/v1"
	"fde/internal/deployconfig"
	"fde/internal/service"
	"fde/internal/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingFileName = errors.New("fileName query parameter is required")

// UploadHandler serves the chunked and whole-file upload endpoints of
// spec §4.3/§4.7.
type UploadHandler struct {
	*Handler
	cfg           *deployconfig.ResolvedConfig
	uploadService service.UploadService
}

func NewUploadHandler(handler *Handler, cfg *deployconfig.ResolvedConfig, uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{Handler: handler, cfg: cfg, uploadService: uploadService}
}

func (h *UploadHandler) Init(ctx *gin.Context) {
	var req v1.InitUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}

	env, ok := resolveEnv(ctx, h.cfg, req.Env)
	if !ok {
		return
	}

	resp, err := h.uploadService.Init(ctx.Request.Context(), env, &req)
	if err != nil {
		h.logger.WithContext(ctx).Error("upload init failed", zap.Error(err))
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

func (h *UploadHandler) Chunk(ctx *gin.Context) {
	uploadID := ctx.Query("uploadId")
	env := ctx.Query("env")
	chunkIndexStr := ctx.Query("chunkIndex")

	if _, ok := resolveEnv(ctx, h.cfg, env); !ok {
		return
	}

	index, err := strconv.Atoi(chunkIndexStr)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}

	md5Hex := ctx.GetHeader("X-Chunk-MD5")
	resp, err := h.uploadService.Chunk(ctx.Request.Context(), uploadID, index, ctx.Request.Body, md5Hex)
	if err != nil {
		status := http.StatusBadRequest
		if err == upload.ErrNotFound {
			status = http.StatusNotFound
		}
		v1.HandleError(ctx, status, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

func (h *UploadHandler) Status(ctx *gin.Context) {
	uploadID := ctx.Query("uploadId")
	env := ctx.Query("env")

	if _, ok := resolveEnv(ctx, h.cfg, env); !ok {
		return
	}

	resp, err := h.uploadService.Status(ctx.Request.Context(), uploadID)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

func (h *UploadHandler) Complete(ctx *gin.Context) {
	var req v1.CompleteUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}

	env, ok := resolveEnv(ctx, h.cfg, req.Env)
	if !ok {
		return
	}

	resp, err := h.uploadService.Complete(ctx.Request.Context(), env, &req)
	if err != nil {
		if mismatch, ok := err.(*upload.ChecksumMismatchError); ok {
			v1.HandleErrorDetail(ctx, http.StatusBadRequest, mismatch.Error(), gin.H{
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			})
			return
		}
		status := http.StatusBadRequest
		if err == upload.ErrNotFound {
			status = http.StatusNotFound
		}
		v1.HandleError(ctx, status, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

func (h *UploadHandler) Cancel(ctx *gin.Context) {
	uploadID := ctx.Query("uploadId")
	env := ctx.Query("env")

	if _, ok := resolveEnv(ctx, h.cfg, env); !ok {
		return
	}

	resp, err := h.uploadService.Cancel(ctx.Request.Context(), uploadID)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

// UploadStream serves the compatibility-only POST /upload-stream: a
// single-shot streamed upload of a whole file with no multipart framing,
// sharing SaveWhole's save/extract tail. Never resumable; kept only for
// callers that predate the chunked protocol.
func (h *UploadHandler) UploadStream(ctx *gin.Context) {
	envName := ctx.Query("env")
	env, ok := resolveEnv(ctx, h.cfg, envName)
	if !ok {
		return
	}

	fileName := ctx.Query("fileName")
	if fileName == "" {
		v1.HandleError(ctx, http.StatusBadRequest, errMissingFileName, nil)
		return
	}
	checksum := ctx.Query("checksum")
	shouldExtract := ctx.Query("shouldExtract") == "true"

	resp, err := h.uploadService.SaveWhole(ctx.Request.Context(), env, fileName, ctx.Request.Body, checksum, shouldExtract)
	if err != nil {
		if mismatch, ok := err.(*upload.ChecksumMismatchError); ok {
			v1.HandleErrorDetail(ctx, http.StatusBadRequest, mismatch.Error(), gin.H{
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			})
			return
		}
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}

// SaveWhole serves POST /upload: the small-file alternative to the
// chunked flow (spec §4.7).
func (h *UploadHandler) SaveWhole(ctx *gin.Context) {
	envName := ctx.PostForm("env")
	env, ok := resolveEnv(ctx, h.cfg, envName)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, err, nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	defer file.Close()

	checksum := ctx.PostForm("checksum")
	shouldExtract := ctx.PostForm("shouldExtract") == "true"

	resp, err := h.uploadService.SaveWhole(ctx.Request.Context(), env, fileHeader.Filename, file, checksum, shouldExtract)
	if err != nil {
		if mismatch, ok := err.(*upload.ChecksumMismatchError); ok {
			v1.HandleErrorDetail(ctx, http.StatusBadRequest, mismatch.Error(), gin.H{
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			})
			return
		}
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, resp)
}
