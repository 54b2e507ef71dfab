package deploy

import (
	"fmt"
	"path/filepath"
	"strings"

	"fde/internal/deployconfig"
	"fde/internal/pathresolve"
)

// PreparedCommand is what a Runner actually executes.
type PreparedCommand struct {
	Command string
	Cwd     string
}

// prepareCommand implements spec §4.6.7: native mode runs deployCommand in
// configDir unchanged; container mode wraps it into a remote shell
// invocation that first ensures uploadPath exists and cds into the
// host-side config directory (or the script's own directory, if
// deployCommand is itself a script path).
func prepareCommand(env *deployconfig.Environment, resolved *deployconfig.ResolvedConfig) PreparedCommand {
	ctx := pathresolve.Context{
		IsContainer:   resolved.IsContainer,
		ConfigDir:     resolved.ConfigDir,
		HostConfigDir: resolved.SSH.HostConfigDir,
	}

	cmdCwd := pathresolve.ResolveCommandCwd(env.DeployCommand, ctx)

	if !resolved.IsContainer {
		return PreparedCommand{Command: cmdCwd.Command, Cwd: cmdCwd.Cwd}
	}

	if pathresolve.IsScriptPath(env.DeployCommand) {
		scriptDir := filepath.Dir(filepath.Join(cmdCwd.Cwd, env.DeployCommand))
		scriptName := "./" + filepath.Base(env.DeployCommand)
		remote := fmt.Sprintf("mkdir -p %s && cd %s && %s",
			shellQuote(env.UploadPath), shellQuote(scriptDir), scriptName)
		return PreparedCommand{Command: remote}
	}

	remote := fmt.Sprintf("mkdir -p %s && cd %s && %s",
		shellQuote(env.UploadPath), shellQuote(cmdCwd.Cwd), env.DeployCommand)
	return PreparedCommand{Command: remote}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
