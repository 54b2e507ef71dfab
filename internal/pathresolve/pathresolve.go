// Package pathresolve implements spec §4.1: converting config strings into
// absolute paths, and deciding (command, working directory) for subprocess
// execution, identically whether the server runs natively or proxies
// execution to a host through a container.
//
// A Context is pure data. Nothing here is stateful.
package pathresolve

import "path/filepath"

// ContainerAnchor is the fixed directory config-relative data paths resolve
// against inside a container, per spec §4.1.
const ContainerAnchor = "/app"

// Context carries both anchors a path or command might need to resolve
// against, plus the mode flag that picks between them. Spec §9 calls this
// out by name as the single place that should make the container/native
// distinction explicit.
type Context struct {
	IsContainer bool
	// ConfigDir is the directory containing the config file, as seen by
	// this process (the container's filesystem, in container mode).
	ConfigDir string
	// HostConfigDir is the same directory as seen by the host shell that
	// an SSH wrapper reaches in container mode. Unused natively.
	HostConfigDir string
}

// ResolveDataPath returns path unchanged if absolute; otherwise it resolves
// relative to the container anchor in container mode, or to ConfigDir
// natively.
func ResolveDataPath(path string, ctx Context) string {
	if filepath.IsAbs(path) {
		return path
	}
	if ctx.IsContainer {
		return filepath.Join(ContainerAnchor, path)
	}
	return filepath.Join(ctx.ConfigDir, path)
}

// ResolvedCommand is the (command, working directory) pair a subprocess or
// SSH wrapper actually executes.
type ResolvedCommand struct {
	Command string
	Cwd     string
}

// ResolveCommandCwd decides where a deploy command runs. All commands run in
// the config directory; in container mode that directory is the host-side
// config directory (the one the SSH wrapper's remote shell can see), not the
// container-side one. The command string itself is never rewritten, so
// relative arguments resolve identically in both modes.
func ResolveCommandCwd(command string, ctx Context) ResolvedCommand {
	if ctx.IsContainer {
		return ResolvedCommand{Command: command, Cwd: ctx.HostConfigDir}
	}
	return ResolvedCommand{Command: command, Cwd: ctx.ConfigDir}
}

// IsScriptPath reports whether command looks like a script invocation
// (starts with "./", "../", or is itself absolute) rather than an arbitrary
// shell command line, per spec §4.6.7's container-mode script detection.
func IsScriptPath(command string) bool {
	if command == "" {
		return false
	}
	if filepath.IsAbs(command) {
		return true
	}
	return len(command) >= 2 && (command[:2] == "./" || (len(command) >= 3 && command[:3] == "../"))
}
