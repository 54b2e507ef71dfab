package main

import (
	"context"
	"flag"
	"fmt"

	"fde/cmd/server/wire"
	"fde/pkg/config"
	"fde/pkg/log"

	"go.uber.org/zap"
)

// @title           Deploy Pipeline API
// @version         1.0
// @description     Chunked upload and remote deploy execution service.
// @license.name  MIT
// @host      localhost:8080
// @securityDefinitions.apiKey Bearer
// @in header
// @name Authorization
func main() {
	var confPath = flag.String("conf", "config/config.yaml", "config path, eg: -conf ./config/config.yaml")
	flag.Parse()
	conf := config.NewConfig(*confPath)

	logger := log.NewLog(conf)

	app, cleanup, err := wire.NewWire(conf, logger, *confPath)
	defer cleanup()
	if err != nil {
		panic(err)
	}
	logger.Info("server start", zap.String("host", fmt.Sprintf("http://%s:%d", conf.GetString("http.host"), conf.GetInt("http.port"))))
	logger.Info("docs addr", zap.String("addr", fmt.Sprintf("http://%s:%d/swagger/index.html", conf.GetString("http.host"), conf.GetInt("http.port"))))
	if err = app.Run(context.Background()); err != nil {
		panic(err)
	}
}
