//go:build wireinject
// +build wireinject

package wire

import (
	"fde/internal/deploy"
	"fde/internal/deployconfig"
	"fde/internal/handler"
	"fde/internal/job"
	"fde/internal/router"
	"fde/internal/server"
	"fde/internal/service"
	"fde/internal/upload"
	"fde/pkg/app"
	"fde/pkg/log"
	"fde/pkg/server/http"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var deployConfigSet = wire.NewSet(
	deployconfig.Load,
)

var uploadSet = wire.NewSet(
	upload.DefaultChunkRoot,
	upload.NewCoordinator,
)

var deploySet = wire.NewSet(
	deploy.NewRunner,
	deploy.NewManager,
)

var jobSet = wire.NewSet(
	job.NewSweepJob,
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewUploadService,
	service.NewDeployService,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewPingHandler,
	handler.NewHealthHandler,
	handler.NewVerifyHandler,
	handler.NewUploadHandler,
	handler.NewDeployHandler,
)

var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewJobServer,
)

func newApp(
	httpServer *http.Server,
	jobServer *server.JobServer,
) *app.App {
	return app.NewApp(
		app.WithServer(httpServer, jobServer),
		app.WithName("fde-server"),
	)
}

// NewWire builds the full process graph: config path in, *app.App out.
// confPath feeds both viper (http/log settings) and deployconfig.Load
// (environments, tokens, container/SSH settings) since both read the same
// YAML file for different concerns.
func NewWire(conf *viper.Viper, logger *log.Logger, confPath string) (*app.App, func(), error) {
	panic(wire.Build(
		deployConfigSet,
		uploadSet,
		deploySet,
		jobSet,
		serviceSet,
		handlerSet,
		serverSet,
		wire.Struct(new(router.RouterDeps), "*"),
		newApp,
	))
}
