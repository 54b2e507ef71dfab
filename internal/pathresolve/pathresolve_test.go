package pathresolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataPathAbsolutePassesThrough(t *testing.T) {
	got := ResolveDataPath("/var/data/x", Context{ConfigDir: "/home/me/cfg"})
	require.Equal(t, "/var/data/x", got)
}

func TestResolveDataPathNativeJoinsConfigDir(t *testing.T) {
	got := ResolveDataPath("dist", Context{ConfigDir: "/home/me/cfg"})
	require.Equal(t, "/home/me/cfg/dist", got)
}

func TestResolveDataPathContainerJoinsAnchor(t *testing.T) {
	got := ResolveDataPath("dist", Context{IsContainer: true, ConfigDir: "/home/me/cfg"})
	require.Equal(t, ContainerAnchor+"/dist", got)
}

func TestResolveCommandCwdNativeUsesConfigDir(t *testing.T) {
	rc := ResolveCommandCwd("./deploy.sh", Context{ConfigDir: "/srv/app"})
	require.Equal(t, "/srv/app", rc.Cwd)
	require.Equal(t, "./deploy.sh", rc.Command)
}

func TestResolveCommandCwdContainerUsesHostConfigDir(t *testing.T) {
	rc := ResolveCommandCwd("./deploy.sh", Context{
		IsContainer:   true,
		ConfigDir:     "/app/cfg",
		HostConfigDir: "/home/ops/cfg",
	})
	require.Equal(t, "/home/ops/cfg", rc.Cwd, "expected cwd to be the host config dir")
	require.Equal(t, "./deploy.sh", rc.Command, "command must not be rewritten")
}

func TestIsScriptPath(t *testing.T) {
	cases := map[string]bool{
		"./deploy.sh":       true,
		"../scripts/run.sh": true,
		"/opt/deploy.sh":    true,
		"npm run deploy":    false,
		"echo hi && exit 0": false,
		"":                  false,
	}
	for cmd, want := range cases {
		require.Equalf(t, want, IsScriptPath(cmd), "IsScriptPath(%q)", cmd)
	}
}
