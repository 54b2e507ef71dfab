package service

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	v1 "fde/api/v1"
	"fde/internal/deployconfig"
	"fde/internal/upload"
)

var wholeUploadCounter atomic.Uint64

// UploadService wraps internal/upload.Coordinator behind the request/
// response DTOs of api/v1, resolving each request's env against the
// loaded configuration the way every other service resolves its
// dependencies (spec §4.3/§4.7).
type UploadService interface {
	Init(ctx context.Context, env *deployconfig.Environment, req *v1.InitUploadRequest) (*v1.InitUploadResponse, error)
	Chunk(ctx context.Context, uploadID string, index int, body io.Reader, md5Hex string) (*v1.ChunkUploadResponse, error)
	Status(ctx context.Context, uploadID string) (*v1.UploadStatusResponse, error)
	Complete(ctx context.Context, env *deployconfig.Environment, req *v1.CompleteUploadRequest) (*v1.CompleteUploadResponse, error)
	Cancel(ctx context.Context, uploadID string) (*v1.CancelUploadResponse, error)
	// SaveWhole implements the small-file alternative of POST /upload: no
	// chunking, no resumption, just receive-verify-save/extract.
	SaveWhole(ctx context.Context, env *deployconfig.Environment, fileName string, body io.Reader, checksum string, shouldExtract bool) (*v1.CompleteUploadResponse, error)
}

type uploadService struct {
	*Service
	coordinator *upload.Coordinator
}

func NewUploadService(service *Service, coordinator *upload.Coordinator) UploadService {
	return &uploadService{Service: service, coordinator: coordinator}
}

func (s *uploadService) Init(ctx context.Context, env *deployconfig.Environment, req *v1.InitUploadRequest) (*v1.InitUploadResponse, error) {
	result, err := s.coordinator.Init(req.UploadID, req.TotalChunks, req.FileName, env.Name, req.ShouldExtract, req.Checksum)
	if err != nil {
		return nil, err
	}
	return &v1.InitUploadResponse{
		UploadedChunks: result.UploadedChunks,
		TotalChunks:    result.TotalChunks,
		IsResume:       result.IsResume,
	}, nil
}

func (s *uploadService) Chunk(ctx context.Context, uploadID string, index int, body io.Reader, md5Hex string) (*v1.ChunkUploadResponse, error) {
	result, err := s.coordinator.Chunk(uploadID, index, body, md5Hex)
	if err != nil {
		return nil, err
	}
	return &v1.ChunkUploadResponse{ChunkIndex: result.ChunkIndex}, nil
}

func (s *uploadService) Status(ctx context.Context, uploadID string) (*v1.UploadStatusResponse, error) {
	result, err := s.coordinator.Status(uploadID)
	if err != nil {
		return nil, err
	}
	return &v1.UploadStatusResponse{
		Exists:         result.Exists,
		UploadedChunks: result.UploadedChunks,
		TotalChunks:    result.TotalChunks,
	}, nil
}

func (s *uploadService) Complete(ctx context.Context, env *deployconfig.Environment, req *v1.CompleteUploadRequest) (*v1.CompleteUploadResponse, error) {
	result, err := s.coordinator.Complete(req.UploadID, req.FileName, req.Checksum, req.ShouldExtract, env.UploadPath)
	if err != nil {
		return nil, err
	}
	return &v1.CompleteUploadResponse{
		FileName:         result.FileName,
		FileSize:         result.FileSize,
		ChecksumVerified: result.ChecksumVerified,
		Extracted:        result.Extracted,
		UploadPath:       result.UploadPath,
	}, nil
}

func (s *uploadService) Cancel(ctx context.Context, uploadID string) (*v1.CancelUploadResponse, error) {
	if err := s.coordinator.Cancel(uploadID); err != nil {
		return nil, err
	}
	return &v1.CancelUploadResponse{Success: true}, nil
}

// SaveWhole stages body under a throwaway single-chunk upload task so it
// can reuse the coordinator's merge/verify/save-or-extract logic instead
// of duplicating it (spec §4.7's "small-file alternative").
func (s *uploadService) SaveWhole(ctx context.Context, env *deployconfig.Environment, fileName string, body io.Reader, checksum string, shouldExtract bool) (*v1.CompleteUploadResponse, error) {
	// env.Name is operator-chosen config, not guaranteed to satisfy
	// validateUploadID's character set, so it goes through SanitizeID
	// rather than being trusted as already safe.
	uploadID := fmt.Sprintf("whole-%s-%d", upload.SanitizeID(env.Name), wholeUploadCounter.Add(1))

	if _, err := s.coordinator.Init(uploadID, 1, fileName, env.Name, shouldExtract, checksum); err != nil {
		return nil, err
	}
	if _, err := s.coordinator.Chunk(uploadID, 0, body, ""); err != nil {
		s.coordinator.Cancel(uploadID)
		return nil, err
	}

	result, err := s.coordinator.Complete(uploadID, fileName, checksum, shouldExtract, env.UploadPath)
	if err != nil {
		return nil, err
	}
	return &v1.CompleteUploadResponse{
		FileName:         result.FileName,
		FileSize:         result.FileSize,
		ChecksumVerified: result.ChecksumVerified,
		Extracted:        result.Extracted,
		UploadPath:       result.UploadPath,
	}, nil
}
