// Package router wires Gin routes to handlers, one file per route group,
// the layout the teacher's internal/router package follows.
package router

import (
	"fde/internal/handler"
	"fde/pkg/log"

	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger        *log.Logger
	Config        *viper.Viper
	PingHandler   *handler.PingHandler
	HealthHandler *handler.HealthHandler
	VerifyHandler *handler.VerifyHandler
	UploadHandler *handler.UploadHandler
	DeployHandler *handler.DeployHandler
}
