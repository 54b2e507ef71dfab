// Package deployconfig resolves the YAML configuration contract described in
// spec §3/§4.1/§6 into a typed, validated model: every path absolute, every
// token resolved through its fallback chain, container mode's mandatory
// variables checked once at load time.
package deployconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"fde/internal/pathresolve"
)

const (
	defaultChunkSizeBytes = 1 << 20 // 1 MiB
	defaultConcurrency    = 3
	defaultCooldownSecs   = 5

	envHostConfigDir = "FDE_HOST_CONFIG_DIR"
	envSSHHost       = "FDE_SSH_HOST"
	envSSHUser       = "FDE_SSH_USER"
	envSSHPort       = "FDE_SSH_PORT"
	envContainerFlag = "FDE_CONTAINER"

	sshKeyPath = "/etc/fde/ssh/id_rsa"
)

// Environment is a single resolved deployment target. LocalPath is
// client-only, UploadPath is server-only; a process only ever populates the
// half it needs.
type Environment struct {
	Name          string
	ServerURL     string
	Token         string
	LocalPath     string
	UploadPath    string
	DeployCommand string
	BuildCommand  string
	Exclude       []string

	ChunkSizeBytes int
	Concurrency    int
	CooldownSecs   int
}

// SSHConfig carries the container-mode proxy settings (§4.6.7/§6).
type SSHConfig struct {
	Host          string
	User          string
	Port          int
	PrivateKey    string
	HostConfigDir string
}

// ResolvedConfig is the top-level config contract: a token/serverUrl
// fallback chain plus the set of named environments.
type ResolvedConfig struct {
	ConfigDir   string
	ServerURL   string
	Token       string
	IsContainer bool
	SSH         SSHConfig

	Environments map[string]*Environment
}

// Load reads path with viper, resolves every environment's paths and
// tokens, and fails fast on any of the fatal configuration errors in spec §7:
// missing token fallback, and (in container mode) a missing host-config-dir.
func Load(path string) (*ResolvedConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("deployconfig: read config: %w", err)
	}

	absConfigPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("deployconfig: resolve config path: %w", err)
	}
	configDir := filepath.Dir(absConfigPath)

	cfg := &ResolvedConfig{
		ConfigDir:    configDir,
		ServerURL:    v.GetString("serverUrl"),
		Token:        v.GetString("token"),
		IsContainer:  isContainerMode(),
		Environments: map[string]*Environment{},
	}

	if cfg.IsContainer {
		hostDir := os.Getenv(envHostConfigDir)
		if hostDir == "" {
			return nil, fmt.Errorf("deployconfig: container mode requires %s", envHostConfigDir)
		}
		cfg.SSH = SSHConfig{
			Host:          os.Getenv(envSSHHost),
			User:          os.Getenv(envSSHUser),
			Port:          sshPortOrDefault(os.Getenv(envSSHPort)),
			PrivateKey:    sshKeyPath,
			HostConfigDir: hostDir,
		}
	}

	envsRaw := v.GetStringMap("environments")
	for name := range envsRaw {
		envKey := "environments." + name
		env := &Environment{
			Name:          name,
			ServerURL:     firstNonEmpty(v.GetString(envKey+".serverUrl"), cfg.ServerURL),
			Token:         firstNonEmpty(v.GetString(envKey+".token"), cfg.Token),
			DeployCommand: v.GetString(envKey + ".deployCommand"),
			BuildCommand:  v.GetString(envKey + ".buildCommand"),
			Exclude:       v.GetStringSlice(envKey + ".exclude"),

			ChunkSizeBytes: intOrDefault(v.GetInt(envKey+".chunkSizeBytes"), defaultChunkSizeBytes),
			Concurrency:    intOrDefault(v.GetInt(envKey+".concurrency"), defaultConcurrency),
			CooldownSecs:   intOrDefault(v.GetInt(envKey+".cooldownSecs"), defaultCooldownSecs),
		}

		if env.Token == "" {
			return nil, fmt.Errorf("deployconfig: environment %q has no token configured", name)
		}

		localPath := v.GetString(envKey + ".localPath")
		if localPath != "" {
			env.LocalPath = resolveDataPath(localPath, cfg, configDir)
		}
		uploadPath := v.GetString(envKey + ".uploadPath")
		if uploadPath != "" {
			env.UploadPath = resolveDataPath(uploadPath, cfg, configDir)
		}

		cfg.Environments[name] = env
	}

	return cfg, nil
}

// resolveDataPath delegates to pathresolve (spec §4.1).
func resolveDataPath(path string, cfg *ResolvedConfig, configDir string) string {
	return pathresolve.ResolveDataPath(path, pathresolve.Context{
		IsContainer: cfg.IsContainer,
		ConfigDir:   configDir,
	})
}

// containerMarkerPath is written into the server's proxy-execution container
// image at build time; its presence, not the generic /.dockerenv any
// container has, is what flips container mode on.
const containerMarkerPath = "/etc/fde/container"

func isContainerMode() bool {
	if v := os.Getenv(envContainerFlag); v == "1" || v == "true" {
		return true
	}
	if v := os.Getenv(envContainerFlag); v == "0" || v == "false" {
		return false
	}
	if _, err := os.Stat(containerMarkerPath); err == nil {
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func intOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func sshPortOrDefault(s string) int {
	if s == "" {
		return 22
	}
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil || port <= 0 {
		return 22
	}
	return port
}
