package deploy

import (
	"fde/internal/deploy/sshexec"
	"fde/internal/deployconfig"
)

// NewRunner picks the native or SSH-proxied runner based on the resolved
// config's container flag (spec §4.6.7), so the wire graph has a single
// Runner provider regardless of deployment mode.
func NewRunner(cfg *deployconfig.ResolvedConfig) Runner {
	if cfg.IsContainer {
		return sshexec.NewRunner(cfg.SSH)
	}
	return NewNativeRunner()
}
