package upload

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	return NewCoordinator(t.TempDir())
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestInitThenChunkThenComplete(t *testing.T) {
	c := newTestCoordinator(t)
	uploadDir := t.TempDir()

	chunks := [][]byte{[]byte("hello "), []byte("world")}
	whole := append(append([]byte{}, chunks[0]...), chunks[1]...)
	checksum := sha256Hex(whole)

	initRes, err := c.Init("upload-1", len(chunks), "greeting.txt", "prod", false, checksum)
	require.NoError(t, err)
	require.False(t, initRes.IsResume, "expected fresh init, not resume")
	require.Empty(t, initRes.UploadedChunks)

	for i, chunk := range chunks {
		_, err := c.Chunk("upload-1", i, strings.NewReader(string(chunk)), md5Hex(chunk))
		require.NoErrorf(t, err, "chunk %d", i)
	}

	status, err := c.Status("upload-1")
	require.NoError(t, err)
	require.True(t, status.Exists)
	require.Len(t, status.UploadedChunks, 2)

	result, err := c.Complete("upload-1", "", "", false, uploadDir)
	require.NoError(t, err)
	require.True(t, result.ChecksumVerified)
	require.False(t, result.Extracted, "did not request extraction")

	saved, err := os.ReadFile(filepath.Join(uploadDir, "greeting.txt"))
	require.NoError(t, err)
	require.Equal(t, string(whole), string(saved))

	_, statErr := os.Stat(c.taskDir("upload-1"))
	require.True(t, os.IsNotExist(statErr), "task dir should be removed after successful complete")
}

func TestInitIsIdempotentAndResumable(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Init("upload-2", 3, "f.bin", "prod", false, "")
	require.NoError(t, err)
	_, err = c.Chunk("upload-2", 0, strings.NewReader("a"), "")
	require.NoError(t, err)

	again, err := c.Init("upload-2", 3, "f.bin", "prod", false, "")
	require.NoError(t, err)
	require.True(t, again.IsResume, "expected resume on re-init of an existing task")
	require.Equal(t, []int{0}, again.UploadedChunks)
}

func TestChunkRejectsBadMD5(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("upload-3", 1, "f.bin", "prod", false, "")
	require.NoError(t, err)
	_, err = c.Chunk("upload-3", 0, strings.NewReader("a"), "deadbeef")
	require.Error(t, err, "expected md5 mismatch error")
}

func TestChunkRejectsOutOfRangeIndex(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("upload-4", 1, "f.bin", "prod", false, "")
	require.NoError(t, err)
	_, err = c.Chunk("upload-4", 5, strings.NewReader("a"), "")
	require.ErrorIs(t, err, ErrChunkOutOfRange)
}

func TestCompleteFailsWhenChunksMissing(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("upload-5", 2, "f.bin", "prod", false, "")
	require.NoError(t, err)
	_, err = c.Chunk("upload-5", 0, strings.NewReader("a"), "")
	require.NoError(t, err)
	_, err = c.Complete("upload-5", "", "", false, t.TempDir())
	require.ErrorIs(t, err, ErrIncompleteUpload)
}

func TestCompleteDetectsChecksumMismatch(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("upload-6", 1, "f.bin", "prod", false, "wrongsum")
	require.NoError(t, err)
	_, err = c.Chunk("upload-6", 0, strings.NewReader("payload"), "")
	require.NoError(t, err)

	_, err = c.Complete("upload-6", "", "", false, t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "mismatch")

	var mismatch *ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestCancelRemovesTask(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("upload-7", 1, "f.bin", "prod", false, "")
	require.NoError(t, err)
	require.NoError(t, c.Cancel("upload-7"))

	status, err := c.Status("upload-7")
	require.NoError(t, err)
	require.False(t, status.Exists, "expected task to be gone after cancel")
}

func TestStatusOnUnknownUploadReturnsNotExists(t *testing.T) {
	c := newTestCoordinator(t)
	status, err := c.Status("never-seen")
	require.NoError(t, err)
	require.False(t, status.Exists)
}

func TestInitRejectsUnsafeUploadID(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.Init("../escape", 1, "f.bin", "prod", false, "")
	require.Error(t, err, "expected rejection of a path-traversal uploadId")
}
