package client

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"os"
	"time"

	v1 "fde/api/v1"
	"fde/internal/deployconfig"

	"github.com/schollz/progressbar/v3"
)

const (
	maxChunkRetries  = 3
	chunkBackoffBase = 1 * time.Second
	chunkBackoffCap  = 10 * time.Second
	chunkBackoffJit  = 500 * time.Millisecond
)

// Verify calls POST /verify, the env/token preflight of spec §4.2.
func (c *Client) Verify(ctx context.Context, env *deployconfig.Environment) error {
	return c.doJSON(ctx, "POST", "/verify", v1.VerifyRequest{Env: env.Name}, nil)
}

// UploadFile drives the full chunked-upload protocol for one local file:
// init, a fixed-size worker pool draining a FIFO queue of chunk indices
// (spec §4.4), then complete. A progress bar tracks bytes acknowledged.
func (c *Client) UploadFile(ctx context.Context, env *deployconfig.Environment, filePath, uploadID string, shouldExtract bool) (*v1.CompleteUploadResponse, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("client: stat %s: %w", filePath, err)
	}

	checksum, err := sha256File(filePath)
	if err != nil {
		return nil, fmt.Errorf("client: checksum %s: %w", filePath, err)
	}

	chunkSize := env.ChunkSizeBytes
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}
	totalChunks := int((info.Size() + int64(chunkSize) - 1) / int64(chunkSize))
	if totalChunks == 0 {
		totalChunks = 1
	}
	fileName := fileBaseName(filePath)

	initResp, err := c.initUpload(ctx, env, uploadID, totalChunks, fileName, checksum, shouldExtract)
	if err != nil {
		return nil, err
	}

	pending := pendingIndices(totalChunks, initResp.UploadedChunks)
	bar := progressbar.DefaultBytes(info.Size(), "uploading "+fileName)
	if initResp.IsResume {
		alreadyDone := int64(totalChunks-len(pending)) * int64(chunkSize)
		_ = bar.Set64(alreadyDone)
	}

	concurrency := env.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	if err := c.drainChunks(ctx, env, filePath, uploadID, chunkSize, pending, concurrency, bar); err != nil {
		return nil, err
	}

	return c.completeUpload(ctx, env, uploadID, fileName, checksum, shouldExtract)
}

func (c *Client) initUpload(ctx context.Context, env *deployconfig.Environment, uploadID string, totalChunks int, fileName, checksum string, shouldExtract bool) (*v1.InitUploadResponse, error) {
	req := v1.InitUploadRequest{
		UploadID:      uploadID,
		TotalChunks:   totalChunks,
		FileName:      fileName,
		Env:           env.Name,
		ShouldExtract: shouldExtract,
		Checksum:      checksum,
	}
	var resp v1.InitUploadResponse
	if err := c.doJSON(ctx, "POST", "/upload/init", req, &resp); err != nil {
		return nil, fmt.Errorf("client: upload init: %w", err)
	}
	return &resp, nil
}

func (c *Client) completeUpload(ctx context.Context, env *deployconfig.Environment, uploadID, fileName, checksum string, shouldExtract bool) (*v1.CompleteUploadResponse, error) {
	req := v1.CompleteUploadRequest{
		UploadID:      uploadID,
		FileName:      fileName,
		Checksum:      checksum,
		ShouldExtract: shouldExtract,
		Env:           env.Name,
	}
	var resp v1.CompleteUploadResponse
	if err := c.doJSON(ctx, "POST", "/upload/complete", req, &resp); err != nil {
		return nil, fmt.Errorf("client: upload complete: %w", err)
	}
	return &resp, nil
}

// drainChunks runs a fixed-size worker pool over a FIFO queue of chunk
// indices. A chunk that exhausts its retries aborts the whole upload but
// leaves server-side task state alone, so a later run can resume (spec
// §4.4): this function never calls /upload/cancel.
func (c *Client) drainChunks(ctx context.Context, env *deployconfig.Environment, filePath, uploadID string, chunkSize int, pending []int, concurrency int, bar *progressbar.ProgressBar) error {
	queue := make(chan int, len(pending))
	for _, idx := range pending {
		queue <- idx
	}
	close(queue)

	errCh := make(chan error, concurrency)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < concurrency; w++ {
		go func() {
			for idx := range queue {
				n, err := c.uploadChunkWithRetry(ctx, env, filePath, uploadID, idx, chunkSize)
				if err != nil {
					errCh <- err
					cancel()
					return
				}
				_ = bar.Add(n)
			}
			errCh <- nil
		}()
	}

	var firstErr error
	for w := 0; w < concurrency; w++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) uploadChunkWithRetry(ctx context.Context, env *deployconfig.Environment, filePath, uploadID string, index, chunkSize int) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= maxChunkRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoffDelay(attempt)):
			}
		}
		n, err := c.uploadChunk(ctx, env, filePath, uploadID, index, chunkSize)
		if err == nil {
			return n, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("client: chunk %d failed after %d attempts: %w", index, maxChunkRetries+1, lastErr)
}

func (c *Client) uploadChunk(ctx context.Context, env *deployconfig.Environment, filePath, uploadID string, index, chunkSize int) (int, error) {
	data, err := readChunk(filePath, index, chunkSize)
	if err != nil {
		return 0, err
	}

	sum := md5.Sum(data)
	path := fmt.Sprintf("/upload/chunk?uploadId=%s&chunkIndex=%d&env=%s",
		url.QueryEscape(uploadID), index, url.QueryEscape(env.Name))

	req, err := c.newRequest(ctx, "POST", path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Chunk-MD5", hex.EncodeToString(sum[:]))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.decode(resp, nil); err != nil {
		return 0, err
	}
	return len(data), nil
}

// backoffDelay implements spec §4.4's retry policy exactly:
// min(1s·2^attempt, 10s) + jitter in [0, 0.5s).
func backoffDelay(attempt int) time.Duration {
	delay := chunkBackoffBase * time.Duration(1<<uint(attempt))
	if delay > chunkBackoffCap {
		delay = chunkBackoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(chunkBackoffJit)))
	return delay + jitter
}

func pendingIndices(totalChunks int, uploaded []int) []int {
	done := make(map[int]bool, len(uploaded))
	for _, idx := range uploaded {
		done[idx] = true
	}
	pending := make([]int, 0, totalChunks-len(uploaded))
	for i := 0; i < totalChunks; i++ {
		if !done[i] {
			pending = append(pending, i)
		}
	}
	return pending
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readChunk(path string, index, chunkSize int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	offset := int64(index) * int64(chunkSize)
	buf := make([]byte, chunkSize)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func fileBaseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// Status calls GET /upload/status.
func (c *Client) Status(ctx context.Context, env *deployconfig.Environment, uploadID string) (*v1.UploadStatusResponse, error) {
	path := "/upload/status?uploadId=" + url.QueryEscape(uploadID) + "&env=" + url.QueryEscape(env.Name)
	req, err := c.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result v1.UploadStatusResponse
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel calls DELETE /upload/cancel.
func (c *Client) Cancel(ctx context.Context, env *deployconfig.Environment, uploadID string) error {
	path := "/upload/cancel?uploadId=" + url.QueryEscape(uploadID) + "&env=" + url.QueryEscape(env.Name)
	req, err := c.newRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.decode(resp, nil)
}
