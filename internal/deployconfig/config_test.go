package deployconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "fde.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadResolvesTokenFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
token: top-level-secret
serverUrl: https://deploy.example.com
environments:
  prod:
    uploadPath: releases/prod
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	env := cfg.Environments["prod"]
	require.Equal(t, "top-level-secret", env.Token)
	require.True(t, filepath.IsAbs(env.UploadPath), "uploadPath must be absolute")
}

func TestLoadEnvTokenOverridesTopLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
token: top-level-secret
environments:
  prod:
    token: prod-only-secret
    uploadPath: /srv/prod
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod-only-secret", cfg.Environments["prod"].Token, "expected env-level token to win")
}

func TestLoadFailsWithNoTokenAnywhere(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
environments:
  prod:
    uploadPath: /srv/prod
`)
	_, err := Load(path)
	require.Error(t, err, "expected load to fail with no token configured")
}

func TestLoadAbsoluteUploadPathUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
token: t
environments:
  prod:
    uploadPath: /opt/releases/prod
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/releases/prod", cfg.Environments["prod"].UploadPath, "absolute path should pass through unchanged")
}
