package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fde/pkg/log"
)

// Server wraps a *gin.Engine with the host/port it binds to and a graceful
// shutdown, so it can be driven by pkg/app's generic Start/Stop lifecycle.
type Server struct {
	*gin.Engine
	logger *log.Logger
	host   string
	port   int
	srv    *http.Server
}

type Option func(*Server)

func WithServerHost(host string) Option {
	return func(s *Server) { s.host = host }
}

func WithServerPort(port int) Option {
	return func(s *Server) { s.port = port }
}

func NewServer(engine *gin.Engine, logger *log.Logger, opts ...Option) *Server {
	s := &Server{Engine: engine, logger: logger, host: "0.0.0.0", port: 8080}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.Engine,
		ReadTimeout:  0,
		WriteTimeout: 0,
		IdleTimeout:  255 * time.Second,
	}
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
