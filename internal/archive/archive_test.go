package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithZipRoundTripAndCleanup(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("Hello, World!"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "node_modules", "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "node_modules", "x", "y.js"), []byte("skip me"), 0o644))

	var zipPathSeen string
	dest := t.TempDir()

	err := WithZip(src, "test", []string{"node_modules"}, 1700000000000, func(zipPath string) error {
		zipPathSeen = zipPath
		_, statErr := os.Stat(zipPath)
		require.NoError(t, statErr, "zip should exist during consume")
		return Extract(zipPath, dest)
	})
	require.NoError(t, err)

	_, statErr := os.Stat(zipPathSeen)
	require.True(t, os.IsNotExist(statErr), "zip should be removed after WithZip returns")

	content, err := os.ReadFile(filepath.Join(dest, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", string(content))

	_, err = os.Stat(filepath.Join(dest, "node_modules"))
	require.True(t, os.IsNotExist(err), "excluded dir should not be present in extracted output")
}

func TestWithZipCleansUpOnConsumeError(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))

	var zipPathSeen string
	err := WithZip(src, "test", nil, 1700000000001, func(zipPath string) error {
		zipPathSeen = zipPath
		return os.ErrInvalid
	})
	require.Error(t, err, "expected consume error to propagate")

	_, statErr := os.Stat(zipPathSeen)
	require.True(t, os.IsNotExist(statErr), "zip should be removed even when consume fails")
}
