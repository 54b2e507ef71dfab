package server

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fde/internal/deploy"
	"fde/internal/deployconfig"
	"fde/internal/handler"
	"fde/internal/router"
	"fde/internal/service"
	"fde/internal/upload"
	"fde/pkg/log"

	"github.com/gavv/httpexpect/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the same handler/service/manager graph wire_gen.go
// builds for the real process, against a throwaway config with one
// environment per test so deploy state never leaks across scenarios.
func newTestServer(t *testing.T, env *deployconfig.Environment) *httptest.Server {
	t.Helper()

	cfg := &deployconfig.ResolvedConfig{
		ConfigDir: t.TempDir(),
		Token:     "",
		Environments: map[string]*deployconfig.Environment{
			env.Name: env,
		},
	}

	conf := viper.New()
	conf.Set("env", "test")
	conf.Set("log.level", "error")
	conf.Set("log.file_name", filepath.Join(t.TempDir(), "test.log"))
	logger := log.NewLog(conf)

	runner := deploy.NewNativeRunner()
	manager := deploy.NewManager(cfg, runner, logger)

	coordinator := upload.NewCoordinator(t.TempDir())
	svc := service.NewService()
	uploadService := service.NewUploadService(svc, coordinator)
	deployService := service.NewDeployService(svc, manager)

	baseHandler := handler.NewHandler(logger)
	deps := router.RouterDeps{
		Logger:        logger,
		Config:        conf,
		PingHandler:   handler.NewPingHandler(baseHandler),
		HealthHandler: handler.NewHealthHandler(baseHandler),
		VerifyHandler: handler.NewVerifyHandler(baseHandler, cfg),
		UploadHandler: handler.NewUploadHandler(baseHandler, cfg, uploadService),
		DeployHandler: handler.NewDeployHandler(baseHandler, cfg, deployService),
	}

	srv := NewHTTPServer(deps)
	return httptest.NewServer(srv)
}

func testEnv(name, deployCommand string) *deployconfig.Environment {
	return &deployconfig.Environment{
		Name:          name,
		Token:         "secret",
		DeployCommand: deployCommand,
		CooldownSecs:  0,
	}
}

func TestStreamedDeployEmitsOutputThenDoneFrames(t *testing.T) {
	ts := newTestServer(t, testEnv("stream-ok", "echo building"))
	defer ts.Close()

	e := httpexpect.Default(t, ts.URL)

	body := e.POST("/deploy").
		WithHeader("Authorization", "secret").
		WithHeader("Accept", "text/event-stream").
		WithJSON(map[string]interface{}{"env": "stream-ok", "stream": true}).
		Expect().
		Status(200).
		Body().Raw()

	require.Contains(t, body, "event: output")
	require.Contains(t, body, "event: done")
}

func TestResumeWithLastEventIDReplaysFromTerminalEvent(t *testing.T) {
	ts := newTestServer(t, testEnv("stream-resume", "echo building"))
	defer ts.Close()

	e := httpexpect.Default(t, ts.URL)

	e.POST("/deploy").
		WithHeader("Authorization", "secret").
		WithHeader("Accept", "text/event-stream").
		WithJSON(map[string]interface{}{"env": "stream-resume", "stream": true}).
		Expect().
		Status(200)

	// A resume with a Last-Event-ID of 0 against an already-finished deploy
	// must synthesise exactly one terminal event (spec §4.6.4) rather than
	// starting a fresh run.
	body := e.POST("/deploy").
		WithHeader("Authorization", "secret").
		WithHeader("Accept", "text/event-stream").
		WithHeader("Last-Event-ID", "0").
		WithJSON(map[string]interface{}{"env": "stream-resume", "stream": true}).
		Expect().
		Status(200).
		Body().Raw()

	require.Contains(t, body, "event: done")
}

func TestSecondFreshStreamRejectedWith409WhileRunning(t *testing.T) {
	ts := newTestServer(t, testEnv("stream-busy", "sleep 0.5"))
	defer ts.Close()

	e := httpexpect.Default(t, ts.URL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.POST("/deploy").
			WithHeader("Authorization", "secret").
			WithHeader("Accept", "text/event-stream").
			WithJSON(map[string]interface{}{"env": "stream-busy", "stream": true}).
			Expect().
			Status(200)
	}()

	time.Sleep(50 * time.Millisecond)

	e.POST("/deploy").
		WithHeader("Authorization", "secret").
		WithHeader("Accept", "text/event-stream").
		WithJSON(map[string]interface{}{"env": "stream-busy", "stream": true}).
		Expect().
		Status(409)

	<-done
}

func TestStatusReflectsFailureAfterNonZeroExit(t *testing.T) {
	ts := newTestServer(t, testEnv("stream-fail", "exit 3"))
	defer ts.Close()

	e := httpexpect.Default(t, ts.URL)

	e.POST("/deploy").
		WithHeader("Authorization", "secret").
		WithHeader("Accept", "text/event-stream").
		WithJSON(map[string]interface{}{"env": "stream-fail", "stream": true}).
		Expect().
		Status(200)

	lastResult := e.GET("/deploy/status").
		WithHeader("Authorization", "secret").
		WithQuery("env", "stream-fail").
		Expect().
		Status(200).
		JSON().Object().
		Value("lastResult").Object()

	lastResult.ValueEqual("success", false)
	lastResult.ValueEqual("exitCode", 3)
}
